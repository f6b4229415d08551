package config

import "strings"

// envKeyReplacer maps nested keys to env var segments, e.g. database.host ->
// PERMITDESK_DATABASE_HOST.
var envKeyReplacer = strings.NewReplacer(".", "_", "-", "_")
