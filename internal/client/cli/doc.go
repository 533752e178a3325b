// Package cli provides the interactive StockKeeper command-line client.
//
// App wires the configuration and the gRPC client into a REPL. Credentials
// are prompted for, passwords are read without echo, and the session lives
// in memory for the lifetime of the process. A background watcher pings the
// server and shows online or offline in the prompt.
//
// Commands cover authentication (admin-login, login, register, register-org,
// refresh, logout), organizations, tags, items and item photos. Type "help"
// in the REPL for the list available in the current state.
package cli
