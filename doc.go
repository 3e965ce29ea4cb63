// Package genattr implements an identity-account attribute generator
// connector: it derives account attribute values (usernames, employee IDs,
// unique logins, UUIDs) for a population of identities according to a
// configured set of attribute rules, and keeps the counter state those
// rules depend on across runs.
//
// The root package holds the shared error type. The actual machinery lives
// in the subpackages:
//
//   - rule: the attribute rule model and rule-set validation
//   - template: CEL expression evaluation against identity attributes
//   - transform: case folding, whitespace removal, diacritic folding
//   - state: persistent counters, ephemeral counters, uniqueness tracking
//   - engine: per-attribute computation, account assembly, population runs
//   - types: identity and account records
//   - schema: discovered account schema
//   - config: connector configuration
//   - directory: the identity-directory client boundary
//   - connector: the host-facing command handlers
//
// A minimal connector looks like:
//
//	cfg, err := config.Load("connector.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := directory.NewHTTPClient(directory.HTTPOptions{
//	    BaseURL:      cfg.BaseURL,
//	    ClientID:     cfg.ClientID,
//	    ClientSecret: cfg.ClientSecret,
//	})
//	conn, err := connector.New(cfg, client)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := connector.RunSubprocess(context.Background(), conn); err != nil {
//	    os.Exit(1)
//	}
package genattr

// Version is the connector version reported to the host runtime.
const Version = "1.0.0"
