/*
Package status tracks per-file outcomes and reports progress for odexpatch.

	            +-------------+
	            |   Status    |
	            | (Tracking)  |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +----+----+
	| Outcomes  |           |  Logs   |
	| (Records) |           | (UI/UX) |
	+-----------+           +---------+

🎯 Purpose:
- Tracks each file's outcome (pending, backed-up, success, failed, skipped)
- Emits one line-oriented status message per terminal outcome
- Tallies a run summary without changing the per-file message contract
- Provides user-friendly run-level feedback

🔄 Flow:
1. The patch pipeline tracks a record per visited file
2. Terminal outcomes produce a colored console line
3. FinishRun prints the completion line with the tally

🤝 Interfaces:
- FileFormatter: Formats outcome, progress and summary messages
- UserLogger: Run-level feedback (validation, fatal errors, completion)
*/
package status
