/*
Package patch implements the core batch pipeline of odexpatch.

	+-------------+
	|   Patcher   |
	| (Core Loop) |
	+------+------+
	       |
	+------+------+
	| Transformer |
	| (Ext. Tool) |
	+------+------+

🎯 Purpose:
- Scans the input directory for files matching the configured pattern
- Backs each file up before any transformation attempt
- Invokes the external tool per file and records the outcome
- Never lets one bad file abort the run

🔄 Flow:
1. Scan input directory (pattern match on base names)
2. Per file: backup copy → transform → Success/Failed
3. Report each terminal outcome via the status manager
4. Emit the completion summary

⚡ Key Responsibilities:
- Per-file error isolation (failures continue to the next file)
- Backup-before-transform ordering
- Optional bounded parallelism (sequential by default)

🤝 Interfaces:
- Transformer: the opaque external tool; stubbed in tests so the pipeline
  is exercised without real subprocesses

📝 Design Philosophy:
The patcher is deliberately dumb about file contents: inputs are opaque
blobs handed to the tool. All intelligence lives in the ordering guarantees
(backup first, continue on failure) and the reporting contract (one status
line per file, completion line at the end).
*/
package patch
