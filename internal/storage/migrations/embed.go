// Package migrations holds the embedded SQL schemas and applies them on
// startup. Postgres carries the relational tables (observations, scores,
// competitor tracking); ClickHouse carries the derived-feature table.
package migrations

import "embed"

//go:embed postgres/*.sql
var PostgresFS embed.FS

//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS
