package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/go-defense-metrics/internal/dashboard"
	"github.com/pable/go-defense-metrics/internal/drilldown"
	"github.com/pable/go-defense-metrics/internal/filter"
	"github.com/pable/go-defense-metrics/internal/model"
	"github.com/pable/go-defense-metrics/internal/report"
	"github.com/pable/go-defense-metrics/internal/session"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cHeader   = color.New(color.FgCyan, color.Bold)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long: `Open a session that keeps the team/game selection and every page's filters
between commands. Type 'help' for available commands.`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

// shellState is what the REPL remembers between commands on top of the session.
type shellState struct {
	sess  *session.Session
	page  model.Category
	drill drilldown.Selectors
	out   io.Writer
}

func runShell(_ *cobra.Command, _ []string) error {
	s, err := openSession("", "")
	if err != nil {
		return err
	}
	st := &shellState{sess: s, page: cfg.Categories[0].Name, drill: drilldown.All(), out: os.Stdout}

	cGreeting.Println("defmetrics shell")
	cMuted.Printf("session %s, type 'help' or 'exit'\n", s.ID)
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		sel := s.Registry.Selection()
		cPrompt.Print("defmetrics")
		cMuted.Printf(" [%s | %s | %s]> ", sel.Team, sel.GameLabel, st.page)
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		cmd, args := tokens[0], tokens[1:]
		rest := strings.TrimSpace(strings.TrimPrefix(line, cmd))

		switch cmd {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "teams":
			report.PrintTeams(st.out, dashboard.Teams(s), sel)
		case "team":
			if rest == "" {
				cError.Fprintln(os.Stderr, "usage: team <code|all>")
				continue
			}
			team := rest
			if strings.EqualFold(team, "all") {
				team = model.AllTeams
			}
			st.announce(s.Registry.SetTeam(team))
		case "game":
			if rest == "" {
				cError.Fprintln(os.Stderr, "usage: game <id|all>")
				continue
			}
			game := rest
			if strings.EqualFold(game, "all") {
				game = model.AllGames
			}
			st.announce(s.Registry.SetGame(game))
		case "games":
			report.PrintGames(st.out, dashboard.Games(s), sel)
		case "summary":
			st.summary()
		case "page":
			if len(args) > 0 {
				name := model.Category(strings.ToLower(args[0]))
				if _, ok := cfg.Category(name); !ok {
					cWarn.Fprintf(os.Stderr, "unknown page %q (have %v)\n", args[0], cfg.CategoryNames())
					continue
				}
				if name != st.page {
					st.drill = drilldown.All()
				}
				st.page = name
			}
			st.showPage(false)
		case "filter":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: filter <defender|game|subtype|navtype> <value>[,<value>...] | filter <dim> -")
				continue
			}
			st.filter(args[0], strings.TrimSpace(strings.TrimPrefix(rest, args[0])))
		case "clear":
			s.ClearFilters(st.page)
			st.drill = drilldown.All()
			cMuted.Fprintf(st.out, "cleared filters on %s\n", st.page)
		case "drill":
			if len(args) == 0 {
				st.showPage(false)
				continue
			}
			if !st.setDrill(args[0], strings.TrimSpace(strings.TrimPrefix(rest, args[0]))) {
				cError.Fprintln(os.Stderr, "usage: drill <player|outcome|subtype> <value|all> | drill reset")
				continue
			}
			st.showPage(false)
		case "ids":
			st.showPage(true)
		case "trend":
			if rest == "" {
				cError.Fprintln(os.Stderr, "usage: trend <defender name>")
				continue
			}
			st.trend(rest)
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", cmd)
		}
	}
	return nil
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"teams", "list teams"},
		{"team <code|all>", "select a defense team"},
		{"games", "list games for the selected team"},
		{"game <id|all>", "select a game"},
		{"summary", "merged summary for the selection"},
		{"page [picks|screens|iso|closeouts]", "show (and switch to) a category page"},
		{"filter <dim> <v1>,<v2>", "set a page filter (dim: defender, game, subtype, navtype)"},
		{"filter <dim> -", "remove one page filter"},
		{"clear", "clear every filter on the current page"},
		{"drill <player|outcome|subtype> <v>", "set a drilldown selector ('all' resets it)"},
		{"drill reset", "reset all drilldown selectors"},
		{"ids", "print the drilldown chance ids"},
		{"trend <defender name>", "game-by-game totals for one defender"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-38s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

func (st *shellState) announce(sel model.Selection) {
	cMuted.Fprintf(st.out, "team=%s game=%s\n", sel.Team, sel.GameLabel)
}

func (st *shellState) summary() {
	sum, err := dashboard.GameSummary(st.sess)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	cHeader.Fprintln(st.out, "\n=== Game Summary ===")
	report.PrintSelection(st.out, sum.Selection)
	report.PrintSummary(st.out, sum.Categories, sum.Table)
}

func (st *shellState) showPage(idsOnly bool) {
	p, err := dashboard.Page(st.sess, st.page, st.drill)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if p.Drill != nil {
		st.drill = p.Drill.Selectors
	}
	if !idsOnly {
		printPage(st.out, p)
		return
	}
	if p.Drill == nil {
		cWarn.Fprintf(os.Stderr, "%s\n", p.DrillUnavailable)
		return
	}
	report.PrintDrillIDs(st.out, p.Drill.Result)
}

func (st *shellState) filter(dim, value string) {
	switch dim {
	case filter.Defender, filter.Game, filter.Subtype, filter.NavType:
	default:
		cWarn.Fprintf(os.Stderr, "unknown filter %q\n", dim)
		return
	}
	var vals []string
	if value != "-" {
		for _, v := range strings.Split(value, ",") {
			if v = strings.TrimSpace(v); v != "" {
				vals = append(vals, v)
			}
		}
	}
	st.sess.SetFilter(st.page, dim, vals)
	st.showPage(false)
}

func (st *shellState) setDrill(which, value string) bool {
	if which == "reset" {
		st.drill = drilldown.All()
		return true
	}
	if value == "" || strings.EqualFold(value, "all") {
		value = model.AllValue
	}
	switch which {
	case "player":
		st.drill.Player = value
	case "outcome":
		st.drill.Outcome = value
	case "subtype":
		st.drill.Subtype = value
	default:
		return false
	}
	return true
}

func (st *shellState) trend(name string) {
	tr, err := dashboard.Trend(st.sess, name)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(tr.Table.Rows) == 0 {
		cMuted.Fprintf(st.out, "no games for %q\n", name)
		return
	}
	cHeader.Fprintf(st.out, "\n=== %s ===\n", tr.Table.Rows[0].Key.DefenderName())
	report.PrintTrend(st.out, tr.Categories, tr.Table)
}
