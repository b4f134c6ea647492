// Package loader seeds anchors and profiles from a YAML file, idempotently:
// anchors are matched by (scope, statement) and never duplicated, profiles by
// name. With watch mode enabled, the seed file is reloaded on change so a
// deployment can manage its standing policy as a file.
package loader
