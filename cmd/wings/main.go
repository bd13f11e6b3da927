package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/kevlu123/wings"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("wings")

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	osAccess := flag.Bool("os", false, "enable the os module")
	verbose := flag.Bool("v", false, "verbose diagnostics")
	flag.Parse()

	verbosity := 0
	if *verbose {
		verbosity = 2
	}
	commonlog.Initialize(verbosity, "")

	cfg := wings.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = wings.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		log.Infof("loaded config from %s", *configPath)
	}
	if *osAccess {
		cfg.EnableOSAccess = true
	}
	cfg.Argv = flag.Args()

	ctx, err := wings.NewContext(&cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer ctx.Destroy()

	if flag.NArg() > 0 {
		runFile(ctx, flag.Arg(0))
		return
	}
	repl(ctx)
}

func runFile(ctx *wings.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log.Infof("executing %s", path)
	if ctx.ExecuteFile(data, path) == nil {
		fmt.Fprint(os.Stderr, ctx.ErrorMessage())
		os.Exit(1)
	}
}

func repl(ctx *wings.Context) {
	stdin := bufio.NewScanner(os.Stdin)
	var pending []string
	for {
		prompt := ">>> "
		if len(pending) > 0 {
			prompt = "... "
		}
		fmt.Print(prompt)
		if !stdin.Scan() {
			fmt.Println()
			return
		}
		line := stdin.Text()

		// A line opening a block, or any continuation, defers execution
		// until a blank line closes the block.
		if len(pending) > 0 || strings.HasSuffix(strings.TrimSpace(line), ":") {
			if line != "" {
				pending = append(pending, line)
				continue
			}
			line = strings.Join(pending, "\n")
			pending = nil
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		result := ctx.ExecuteExpression(line, "<stdin>")
		if result == nil {
			ctx.ClearException()
			result = ctx.Execute(line, "<stdin>")
		}
		if result == nil {
			fmt.Print(ctx.ErrorMessage())
			ctx.ClearException()
			continue
		}
		if !result.IsNone() {
			if s := ctx.ToRepr(result); s != nil {
				fmt.Println(s.String())
			} else {
				ctx.ClearException()
			}
		}
	}
}
