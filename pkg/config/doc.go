/*
Package config manages run configuration parsing and validation for odexpatch.

	            +-------------+
	            |   Config    |
	            | (Run paths) |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +----+----+
	|   YAML    |           |   HCL   |
	| Parser    |           | Parser  |
	+-----------+           +---------+

🎯 Purpose:
- Loads the four run directories (input, output, backup, tools) plus the
  patch tool name, file pattern and worker count
- Applies the zero-argument defaults when no config file is present
- Validates values and cleans paths before the pipeline starts

🔄 Flow:
1. Reads configuration from file (or falls back to Default)
2. Parses format-specific syntax
3. Validates configuration values
4. Provides validated config to the patch pipeline

⚡ Key Responsibilities:
- Configuration parsing
- Default value management
- Directory preparation (EnsureDirs)
*/
package config
