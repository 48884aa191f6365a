// Command authctl signs in to a tenant from the terminal. Cookies and local
// storage are kept in a SQLite profile so a session survives between runs.
//
// Configuration comes from a YAML file (--config), an optional .env file
// (--env-file) and AUTHCTL_* environment variables, in increasing order of
// precedence. Flags override all three.
//
//	authctl --tenant demo1234 login password --email jane@example.com --password '...'
//	authctl whoami
//	authctl logout
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
