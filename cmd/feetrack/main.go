package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"feetrack/internal/cli"
	"feetrack/internal/core"
	"feetrack/internal/engine"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("FEETRACK_LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	eng, cleanup := cli.InitEngine(logger, cfg)
	defer cleanup()

	ctx := context.Background()
	eng.Load(ctx)

	args := os.Args[1:]
	cmd := "summary"
	if len(args) > 0 {
		cmd = args[0]
		args = args[1:]
	}

	switch cmd {
	case "summary":
		runSummary(eng, args)
	case "export":
		dir := cfg.BackupDir
		if len(args) > 0 {
			dir = args[0]
		}
		path, err := eng.ExportToFile(dir)
		if err != nil {
			logger.Error("Export failed", "error", err)
			os.Exit(1)
		}
		fmt.Println(path)
	case "import":
		if len(args) != 1 {
			fmt.Fprintln(os.Stderr, "usage: feetrack import <file>")
			os.Exit(2)
		}
		data, err := eng.ImportFromFile(ctx, args[0])
		if err != nil {
			logger.Error("Import failed", "error", err, "file", args[0])
			os.Exit(1)
		}
		fmt.Printf("imported %d locations, %d students, %d payments\n",
			len(data.Locations), len(data.Students), len(data.Payments))
	case "theme":
		if len(args) == 0 {
			fmt.Println(eng.LoadTheme(ctx))
			return
		}
		if err := eng.SaveTheme(ctx, core.Theme(args[0])); err != nil {
			fmt.Fprintln(os.Stderr, "usage: feetrack theme [light|dark]")
			os.Exit(2)
		}
	default:
		fmt.Fprintln(os.Stderr, "usage: feetrack [summary [month year] | export [dir] | import <file> | theme [light|dark]]")
		os.Exit(2)
	}
}

func runSummary(eng *engine.Engine, args []string) {
	now := time.Now()
	period := core.Period{Month: int(now.Month()) - 1, Year: now.Year()}
	if len(args) == 2 {
		month, err1 := strconv.Atoi(args[0])
		year, err2 := strconv.Atoi(args[1])
		if err1 != nil || err2 != nil || !(core.Period{Month: month, Year: year}).Valid() {
			fmt.Fprintln(os.Stderr, "usage: feetrack summary <month 0-11> <year>")
			os.Exit(2)
		}
		period = core.Period{Month: month, Year: year}
	}

	s := eng.Summary(period)
	fmt.Printf("%s %d: collected %.2f, %d active students\n",
		core.MonthName(s.Period.Month), s.Period.Year, s.TotalCollected, s.ActiveStudentCount)
	for _, ls := range s.Locations {
		fmt.Printf("  %-20s %d/%d paid\n", ls.Location.Name, ls.PaidCount, ls.StudentCount)
	}
	if !eng.SaveOK() {
		fmt.Fprintln(os.Stderr, "warning: last save did not reach storage")
	}
}
