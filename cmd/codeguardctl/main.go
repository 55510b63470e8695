package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/bryanwahyu/codeguard/internal/client"
	domain "github.com/bryanwahyu/codeguard/internal/domain/analyses"
)

const usage = `usage:
  codeguardctl analyze [-server URL] [-interval 1s] [-timeout 60s] <file>
  codeguardctl stats [-server URL]`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "analyze":
		err = runAnalyze(os.Args[2:])
	case "stats":
		err = runStats(os.Args[2:])
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func defaultServer() string {
	if v := os.Getenv("CODEGUARD_SERVER"); v != "" {
		return v
	}
	return "http://localhost:5000"
}

func runAnalyze(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	server := fs.String("server", defaultServer(), "CodeGuard API base URL")
	interval := fs.Duration("interval", client.DefaultInterval, "Poll interval")
	timeout := fs.Duration("timeout", 60*time.Second, "Give up after this long")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("analyze needs exactly one file")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	c := client.New(*server, os.Getenv("CODEGUARD_API_KEY"))
	a, err := c.Upload(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	fmt.Printf("submitted %s (%s, %s)\n", a.ID, a.Filename, a.Language)

	a, err = c.Wait(ctx, a.ID, *interval)
	if err != nil {
		return err
	}
	if a.Status == domain.StatusFailed {
		return fmt.Errorf("analysis %s failed: %s", a.ID, a.FailureReason)
	}
	printResult(a)
	return nil
}

func printResult(a *domain.Analysis) {
	r := a.Results
	fmt.Printf("%d lines scanned in %dms\n", r.LinesOfCode, r.AnalysisTime)
	fmt.Printf("critical=%d high=%d medium=%d low=%d total=%d\n",
		r.Summary.Critical, r.Summary.High, r.Summary.Medium, r.Summary.Low, r.Summary.Total)

	issues := append([]domain.Issue(nil), r.Issues...)
	domain.SortBySeverity(issues)
	for _, is := range issues {
		fmt.Printf("  [%-8s] line %-4d %-22s %s\n", is.Severity, is.Line, is.RuleID, is.Title)
		if is.Suggestion != "" {
			fmt.Printf("             fix: %s\n", is.Suggestion)
		}
	}
}

func runStats(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	server := fs.String("server", defaultServer(), "CodeGuard API base URL")
	fs.Parse(args)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := client.New(*server, os.Getenv("CODEGUARD_API_KEY")).Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("analyses=%d bugs=%d vulnerabilities=%d fixed=%d\n",
		s.TotalAnalyses, s.BugsFound, s.Vulnerabilities, s.Fixed)
	return nil
}
