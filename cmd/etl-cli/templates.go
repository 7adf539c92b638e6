package main

const configTemplate = `# Pipeline Configuration
pipeline:
  name: "{{.Name}}"
  kind: "{{.Kind}}"
  # Run log key; defaults to the kind's description.
  # description: ""

  # Five-field cron schedule used by "etl-cli schedule"
  # Examples:
  # schedule: "0 1 * * *"   # Run at 01:00 every day
  # schedule: "0 */2 * * *" # Run every 2 hours
  schedule: "0 1 * * *"

  # Bounds watermark read, extraction and load. "0s" disables it.
  timeout: "2h"

  # Fail the run when a source date falls outside 1900-2199
  strict_dates: false

# Source Database Configuration (MongoDB, URI from MONGO_URI)
source:
  type: "mongodb"
  database: "${MONGO_DB}"
  excluded_authors: ["dev", "unit-test"]
  concurrency: 16
  run_log_collection: "migration-log"
  lock_collection: "etl-locks"

# Sink Database Configuration (sqlserver or postgres)
sink:
  type: "sqlserver"
  # Defaults per kind: table, style, chunk_size and procedures
  # table: ""
  # style: "{{.Style}}"
  # chunk_size: {{.ChunkSize}}
  parameterized: false
  # procedures: []
  # dump_path: "dumps/{{.Name}}.sql"
`

const readmeTemplate = `# {{.Name}} pipeline

Loads the {{.Kind}} fact from MongoDB into the warehouse staging table and
runs the upsert procedures.

## Running the Pipeline

1. Copy ` + "`" + `.env.template` + "`" + ` to ` + "`" + `.env` + "`" + ` and fill in the connections.

2. Validate the configuration:
   ` + "```bash" + `
   etl-cli validate --config pipelines/{{.Name}}/config.yaml
   ` + "```" + `

3. Preview the statements without touching the warehouse:
   ` + "```bash" + `
   etl-cli run --config pipelines/{{.Name}}/config.yaml --dry-run
   ` + "```" + `

4. Run once, or on the configured schedule:
   ` + "```bash" + `
   etl-cli run --config pipelines/{{.Name}}/config.yaml
   etl-cli schedule --config pipelines/{{.Name}}/config.yaml
   ` + "```" + `

## Monitoring

Runs are recorded in the ` + "`" + `migration-log` + "`" + ` collection. Set
` + "`" + `PUSHGATEWAY_URL` + "`" + ` to push run metrics after every run.`

const envTemplate = `# Source (MongoDB)
MONGO_URI=mongodb://localhost:27017
MONGO_DB=purchasing

# Sink (SQL Server)
SQLSERVER_HOST=localhost
SQLSERVER_PORT=1433
SQLSERVER_USER=sa
SQLSERVER_PASSWORD=YourStrong@Passw0rd
SQLSERVER_DB=dwh

# Sink (PostgreSQL)
POSTGRES_HOST=localhost
POSTGRES_PORT=5432
POSTGRES_USER=etl_user
POSTGRES_PASSWORD=etl_password
POSTGRES_DB=dwh
POSTGRES_SSLMODE=disable

# Overrides the DSN assembled above
# WAREHOUSE_DSN=

# Monitoring Configuration
PUSHGATEWAY_URL=
LOG_LEVEL=info
LOG_FORMAT=json
`
