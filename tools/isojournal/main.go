package main

import (
	"fmt"
	"os"
	"time"

	"isogrid-server/internal/domain"
	"isogrid-server/internal/infrastructure/storage"
	"isogrid-server/internal/version"
)

func main() {
	if len(os.Args) < 2 {
		printHelp()
		return
	}

	switch os.Args[1] {
	case "info", "dump":
		if len(os.Args) < 3 {
			fmt.Printf("Usage: isojournal %s <file%s>\n", os.Args[1], storage.FileExt)
			os.Exit(2)
		}
		session, err := storage.LoadFile(os.Args[2])
		if err != nil {
			fmt.Printf("Cannot read journal: %v\n", err)
			os.Exit(1)
		}
		printInfo(session)
		if os.Args[1] == "dump" {
			printActions(session)
		}
	case "buildid":
		date := time.Now().UTC().Format("2006-01-02")
		if len(os.Args) >= 3 {
			date = os.Args[2]
		}
		id, err := version.BuildIDFor(date)
		if err != nil {
			fmt.Printf("Invalid date: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(id)
	default:
		printHelp()
	}
}

func printInfo(s *domain.ReplaySession) {
	fmt.Printf("session:   %s\n", s.SessionID)
	fmt.Printf("level:     %d\n", s.LevelID)
	fmt.Printf("seed:      %d\n", s.Seed)
	fmt.Printf("tick rate: %d\n", s.TickRate)
	fmt.Printf("recorded:  %s\n", time.Unix(s.Timestamp, 0).UTC().Format(time.RFC3339))
	fmt.Printf("actions:   %d\n", len(s.Actions))
	if n := len(s.Actions); n > 0 && s.TickRate > 0 {
		last := s.Actions[n-1].Tick
		fmt.Printf("last tick: %d (%.1fs)\n", last, float64(last)/float64(s.TickRate))
	}
}

func printActions(s *domain.ReplaySession) {
	for _, a := range s.Actions {
		fmt.Printf("%8d  %-6s %-24s %s\n", a.Tick, a.Action, a.Token, string(a.Payload))
	}
}

func printHelp() {
	fmt.Println(`isojournal - просмотр журналов ввода уровня
Commands:
  info <file>       - заголовок журнала (уровень, сид, тикрейт, число действий)
  dump <file>       - заголовок и все действия по тикам
  buildid [date]    - build id для даты (YYYY-MM-DD, по умолчанию сегодня)`)
}
