// Command resetctl is a small operator tool around the reset package,
// in the mould of go-ethereum's cmd/ subcommands built on
// github.com/urfave/cli/v2: a "demo" subcommand exercising the set
// algebra on the command line, and a "bench" subcommand reporting how
// long a batch of inserts and a batch of lookups take, to make the
// Bloom-pruning and weight-balance work in internal/wbtree observable
// without attaching a profiler.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/go-reset/reset"
	"github.com/go-reset/reset/config"
)

var configFlag = &cli.StringFlag{
	Name:  "config",
	Usage: "path to a TOML tunables file (default: built-in defaults)",
}

func stringConfig() *reset.Config[string] {
	return &reset.Config[string]{
		Hash: hashString,
		Eq:   func(a, b string) bool { return a == b },
	}
}

// hashString is an FNV-1a variant, chosen only because it is short and
// dependency-free for a command-line demo; Set accepts any Hash the
// caller supplies.
func hashString(s string) uint64 {
	const (
		offset = 14695981039346656037
		prime  = 1099511628211
	)
	h := uint64(offset)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}
	return h
}

func loadTunables(c *cli.Context) (config.Tunables, error) {
	return config.Load(c.String("config"))
}

func demoCommand(c *cli.Context) error {
	t, err := loadTunables(c)
	if err != nil {
		return err
	}
	cfg := stringConfig()
	a, err := reset.New(cfg, reset.WithSizeExp(t.SizeExp))
	if err != nil {
		return err
	}
	defer a.Close()
	b, err := reset.New(cfg, reset.WithSizeExp(t.SizeExp))
	if err != nil {
		return err
	}
	defer b.Close()

	for _, v := range strings.Fields(c.Args().Get(0)) {
		if err := a.Insert(v); err != nil && err != reset.ErrDuplicate {
			return err
		}
	}
	for _, v := range strings.Fields(c.Args().Get(1)) {
		if err := b.Insert(v); err != nil && err != reset.ErrDuplicate {
			return err
		}
	}

	union, err := reset.New(cfg, reset.WithSizeExp(t.SizeExp))
	if err != nil {
		return err
	}
	defer union.Close()
	if err := union.Union(a, b); err != nil {
		return err
	}

	inter, err := reset.New(cfg, reset.WithSizeExp(t.SizeExp))
	if err != nil {
		return err
	}
	defer inter.Close()
	if err := inter.Intersection(a, b); err != nil {
		return err
	}

	fmt.Printf("a: %d elements\nb: %d elements\nunion: %d elements\nintersection: %d elements\n",
		a.Cardinality(), b.Cardinality(), union.Cardinality(), inter.Cardinality())
	union.Select(nil, func(v string) int {
		fmt.Println("  union:", v)
		return 0
	})
	return nil
}

func benchCommand(c *cli.Context) error {
	t, err := loadTunables(c)
	if err != nil {
		return err
	}
	n := c.Int("n")
	if n <= 0 {
		n = 100000
	}

	cfg := stringConfig()
	s, err := reset.New(cfg, reset.WithSizeExp(t.SizeExp))
	if err != nil {
		return err
	}
	defer s.Close()

	start := time.Now()
	for i := 0; i < n; i++ {
		if err := s.Insert(strconv.Itoa(i)); err != nil {
			return err
		}
	}
	insertElapsed := time.Since(start)

	start = time.Now()
	hits := 0
	for i := 0; i < n; i++ {
		if _, ok := s.Contains(strconv.Itoa(i)); ok {
			hits++
		}
	}
	lookupElapsed := time.Since(start)

	log.Info("bench complete",
		"size_exp", t.SizeExp,
		"n", n,
		"insert", insertElapsed,
		"lookup", lookupElapsed,
		"hits", hits,
	)
	return nil
}

func main() {
	app := &cli.App{
		Name:  "resetctl",
		Usage: "exercise the reset set container from the command line",
		Flags: []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:      "demo",
				Usage:     "build two sets from space-separated word lists and print their union and intersection",
				ArgsUsage: "\"<words for a>\" \"<words for b>\"",
				Action:    demoCommand,
			},
			{
				Name:  "bench",
				Usage: "insert and look up n synthetic elements, reporting elapsed time",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "n", Value: 100000, Usage: "number of elements"},
				},
				Action: benchCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Error("resetctl failed", "err", err)
		os.Exit(1)
	}
}
