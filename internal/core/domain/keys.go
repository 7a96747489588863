package domain

const (
	// Common Keys
	KeyName       = "name"
	KeyID         = "id"
	KeyIdentifier = "identifier"

	// Keyword replacement tokens, e.g. ##DOMAIN## and @@CALLBACKS@@
	KeywordRawDelimiter  = "##"
	KeywordJSONDelimiter = "@@"

	// Policy keys
	PolicyAllowDelete                 = "allow_delete"
	PolicyDryRun                      = "dry_run"
	PolicyIgnoreUnavailableMigrations = "ignore_unavailable_migrations"
)
