// Package config loads the dashboard configuration.
//
// # Sources
//
// Values are resolved in increasing order of precedence:
//
//	1. Default()
//	2. a YAML file (config.yaml, configs/config.yaml, or the path given to LoadFrom)
//	3. a .env file in the working directory
//	4. process environment variables
//
// # Environment Variables
//
// Every variable is prefixed with EDUBOARD and follows the struct nesting:
//
//	EDUBOARD_SERVER_PORT=8080
//	EDUBOARD_LOGGING_LEVEL=debug
//	EDUBOARD_BACKEND_BASE_URL=http://localhost:8000/api
//	EDUBOARD_BACKEND_ENABLED=false
//	EDUBOARD_UPLOAD_MAX_BYTES=10485760
//	EDUBOARD_SECURITY_ALLOWED_ORIGINS=http://localhost:3000,https://dash.example.org
//
// # YAML
//
//	server:
//	  port: 8080
//	backend:
//	  base_url: http://localhost:8000/api
//	  submit_path: /upload-data
//	telemetry:
//	  trace_exporter: stdout
package config
