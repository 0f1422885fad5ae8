// Command statsctl loads netball statistics into SQLite and prints scores,
// rosters and leaderboards.
package main

import "github.com/okian/netstats/internal/cli"

func main() {
	cli.Execute()
}
