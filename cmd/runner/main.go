// Command runner executes one automation run from the terminal with a
// visible browser, for demos and locator debugging. Field values are
// given as name=value arguments; without any, a sample data set is used.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"formrunner/internal/automation/filler"
	"formrunner/internal/automation/locator"
	"formrunner/internal/automation/orchestrator"
	"formrunner/internal/automation/provider"
	"formrunner/internal/infrastructure/browser"
	"formrunner/internal/infrastructure/env"
	"formrunner/internal/infrastructure/logger"
)

var sampleData = map[string]string{
	"city":           "Ahmedabad",
	"service_number": "TEST123456",
	"t_number":       "T123456789",
	"mobile":         "9876543210",
	"email":          "test@example.com",
}

func main() {
	providerKey := flag.String("provider", "torrent_power", "provider table to run")
	keepOpen := flag.Bool("keep-open", true, "leave the browser open for review")
	headless := flag.Bool("headless", false, "run without a visible browser window")
	keystrokes := flag.Bool("keystrokes", true, "type values character by character")
	flag.Parse()

	env.NewEnvService()
	log := logger.New(logger.Config{Dir: "log", Filename: "runner.log", Debug: true})
	defer func() { _ = log.Sync() }()

	p, ok := provider.Lookup(*providerKey)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown provider %q; known: ", *providerKey)
		for _, known := range provider.All() {
			fmt.Fprintf(os.Stderr, "%s ", known.Key)
		}
		fmt.Fprintln(os.Stderr)
		os.Exit(1)
	}

	values := parseValues(flag.Args())
	if len(values) == 0 {
		fmt.Println("no field values given, using sample data")
		values = sampleData
	}

	browserCfg := browser.DefaultConfig(browser.DetectProfile())
	browserCfg.Headless = *headless
	browserCfg.SlowMotion = 300 * time.Millisecond

	fillCfg := filler.DefaultConfig()
	if *keystrokes {
		fillCfg.Mode = filler.ModeKeystrokes
	}

	manager := browser.NewManager(browserCfg, log)
	loc := locator.New(log)
	fill := filler.New(loc, fillCfg, log)

	engine := orchestrator.New(
		orchestrator.NewBrowserOpener(manager, fill),
		orchestrator.Config{},
		log,
	)

	review := orchestrator.ReviewPolicy{AutoClose: !*keepOpen, CloseDelay: 5 * time.Second}
	result := engine.Run(context.Background(), orchestrator.Request{
		Provider: p,
		Values:   values,
		Review:   &review,
	})

	fmt.Printf("\nResult: success=%v fields=%d/%d (%s)\n",
		result.Success, result.FieldsFilled, result.TotalFields, result.SuccessRate)
	for _, out := range result.Outcomes {
		mark := "FAILED"
		if out.Succeeded {
			mark = string(out.StrategyUsed)
		}
		fmt.Printf("  %-18s %s", out.FieldName, mark)
		if out.ErrorDetail != "" {
			fmt.Printf(" (%s)", out.ErrorDetail)
		}
		fmt.Println()
	}
	for _, shot := range result.Screenshots {
		fmt.Println("  screenshot:", shot)
	}

	if *keepOpen {
		fmt.Println("\nBrowser left open for review. Press Ctrl+C to exit.")
		select {}
	}
}

func parseValues(args []string) map[string]string {
	values := make(map[string]string)
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			fmt.Fprintf(os.Stderr, "ignoring argument %q, expected name=value\n", arg)
			continue
		}
		values[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return values
}
