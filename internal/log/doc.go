// Package log provides redacting loggers built on top of the standard slog
// package.
//
// Project archives come from student accounts. Their paths embed the
// account name (src/appinventor/ai_<account>/...) and error messages can
// quote email addresses found in project.properties. The SecureHandler
// masks these before they reach the log output:
//   - attributes whose key names personal data (email, student, author)
//   - email addresses anywhere inside string values
//   - the account segment of App Inventor source paths
//   - secrets such as passwords and tokens, which may appear in
//     configuration errors
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Warn("screen skipped",
//	    "entry", "src/appinventor/ai_jane/HelloPurr/Screen1.bky", // logged as ai_***
//	    "email", "jane@example.com",                              // fully masked
//	)
//	slog.SetDefault(logger)
package log
