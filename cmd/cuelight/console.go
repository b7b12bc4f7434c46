package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/stagecue/cuelight-core/internal/channel"
	"github.com/stagecue/cuelight-core/internal/cue"
	"github.com/stagecue/cuelight-core/internal/infrastructure/logging"
	"github.com/stagecue/cuelight-core/internal/receiver"
	"github.com/stagecue/cuelight-core/internal/transmitter"
)

// The console is the binary's intent surface: a line-oriented stdin loop
// issuing named operations against the protocol adapters. All semantics
// live in the adapters; the console only parses and prints.

// readLines feeds stdin lines to a channel until EOF.
func readLines(ctx context.Context) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

const transmitterHelp = `commands:
  standby <ch>                  toggle master standby on a channel
  solo <ch>                     solo standby / solo fire on a channel
  go                            MASTER GO: fire all master standbys
  arm                           arm the current cue
  fire                          GO the current armed cue
  next | prev                   move the cue pointer
  cues                          list the cue list
  status                        show all channel states
  config <ch> <label> [color]   relabel / recolour a channel
  cue add <number> <label> <ch,ch,...>
  cue del <id>
  help`

func runTransmitterConsole(ctx context.Context, a *transmitter.Adapter, log *logging.Logger) {
	lines := readLines(ctx)
	fmt.Println(transmitterHelp)

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			handleTransmitterCommand(ctx, a, log, strings.Fields(strings.TrimSpace(line)))
		}
	}
}

func handleTransmitterCommand(ctx context.Context, a *transmitter.Adapter, log *logging.Logger, args []string) {
	if len(args) == 0 {
		return
	}

	switch args[0] {
	case "standby":
		if id, ok := parseChannelArg(args); ok {
			a.Apply(id, channel.IntentToggleMaster)
		}
	case "solo":
		if id, ok := parseChannelArg(args); ok {
			a.Apply(id, channel.IntentToggleSolo)
		}
	case "go":
		a.MasterGo()
	case "arm":
		if err := a.ArmCue(); err != nil {
			fmt.Printf("arm: %v\n", err)
		}
	case "fire":
		if err := a.GoCue(); err != nil {
			fmt.Printf("fire: %v\n", err)
		}
	case "next":
		a.NextCue()
		printCurrentCue(a)
	case "prev":
		a.PrevCue()
		printCurrentCue(a)
	case "cues":
		for _, c := range a.Cues() {
			marker := " "
			if cur, ok := a.CurrentCue(); ok && cur.ID == c.ID {
				marker = ">"
			}
			fmt.Printf("%s %-6s %-30s channels=%v id=%s\n", marker, c.Number, c.Label, c.Channels, c.ID)
		}
	case "status":
		for _, ch := range a.SnapshotChannels() {
			fmt.Printf("%d  %-12s %-14s confirmed=%v\n", ch.NumericID, ch.Label, ch.Status, ch.ConfirmedSubscribers)
		}
	case "config":
		handleConfigCommand(ctx, a, args)
	case "cue":
		handleCueCommand(ctx, a, args)
	case "help":
		fmt.Println(transmitterHelp)
	default:
		log.Debug("unknown command", "command", args[0])
		fmt.Printf("unknown command %q (try help)\n", args[0])
	}
}

func handleConfigCommand(ctx context.Context, a *transmitter.Adapter, args []string) {
	if len(args) < 3 {
		fmt.Println("usage: config <ch> <label> [color]")
		return
	}
	id, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Printf("config: %q is not a channel\n", args[1])
		return
	}

	label := args[2]
	colorName, colorHex, textColorHex := "", "", ""
	if len(args) > 3 {
		entry, ok := channel.PaletteByName(args[3])
		if !ok {
			fmt.Printf("config: unknown color %q\n", args[3])
			return
		}
		colorName, colorHex, textColorHex = entry.Name, entry.ColorHex, entry.TextColorHex
	} else if snap, snapErr := a.SnapshotChannel(id); snapErr == nil {
		colorName, colorHex, textColorHex = snap.ColorName, snap.ColorHex, snap.TextColorHex
	}

	if err := a.UpdateChannelConfig(ctx, id, label, colorName, colorHex, textColorHex); err != nil {
		fmt.Printf("config: %v\n", err)
	}
}

func handleCueCommand(ctx context.Context, a *transmitter.Adapter, args []string) {
	if len(args) < 2 {
		fmt.Println("usage: cue add <number> <label> <ch,ch,...> | cue del <id>")
		return
	}

	switch args[1] {
	case "add":
		if len(args) < 5 {
			fmt.Println("usage: cue add <number> <label> <ch,ch,...>")
			return
		}
		number := args[2]
		numberFloat, err := cue.ParseNumber(number)
		if err != nil {
			fmt.Printf("cue add: %v\n", err)
			return
		}
		var channels []int
		for _, part := range strings.Split(args[4], ",") {
			id, convErr := strconv.Atoi(strings.TrimSpace(part))
			if convErr != nil {
				fmt.Printf("cue add: %q is not a channel\n", part)
				return
			}
			channels = append(channels, id)
		}
		c := cue.Cue{
			Number:      number,
			NumberFloat: numberFloat,
			Label:       args[3],
			Channels:    channels,
		}
		if err := a.UpsertCue(ctx, c); err != nil {
			fmt.Printf("cue add: %v\n", err)
		}
	case "del":
		if len(args) < 3 {
			fmt.Println("usage: cue del <id>")
			return
		}
		if err := a.DeleteCue(ctx, args[2]); err != nil {
			fmt.Printf("cue del: %v\n", err)
		}
	default:
		fmt.Println("usage: cue add <number> <label> <ch,ch,...> | cue del <id>")
	}
}

func parseChannelArg(args []string) (int, bool) {
	if len(args) < 2 {
		fmt.Printf("usage: %s <ch>\n", args[0])
		return 0, false
	}
	id, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Printf("%s: %q is not a channel\n", args[0], args[1])
		return 0, false
	}
	return id, true
}

func printCurrentCue(a *transmitter.Adapter) {
	if c, ok := a.CurrentCue(); ok {
		fmt.Printf("standby cue: %s - %s\n", c.Number, c.Label)
	} else {
		fmt.Println("standby cue: --")
	}
}

const receiverHelp = `commands:
  confirm                       answer the current standby request
  view                          show the current channel view
  set name <name>               rename this receiver
  set channel <ch>              watch a different channel
  set broker <host>             move to another broker (rebuilds session)
  help`

// runReceiverConsole reads from a caller-owned line channel rather than
// opening stdin itself: the receiver session is rebuilt on broker changes,
// and a per-session reader would stay blocked in Scan and swallow the
// first line typed into the next session.
func runReceiverConsole(ctx context.Context, a *receiver.Adapter, log *logging.Logger, lines <-chan string, reconnect chan<- struct{}) {
	fmt.Println(receiverHelp)

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			handleReceiverCommand(a, log, strings.Fields(strings.TrimSpace(line)), reconnect)
		}
	}
}

func handleReceiverCommand(a *receiver.Adapter, log *logging.Logger, args []string, reconnect chan<- struct{}) {
	if len(args) == 0 {
		return
	}

	switch args[0] {
	case "confirm":
		if err := a.Confirm(); err != nil {
			fmt.Printf("confirm: %v\n", err)
		} else {
			fmt.Println("CONFIRMED")
		}
	case "view":
		v := a.View()
		if !v.Connected {
			fmt.Println("DISCONNECTED")
			return
		}
		fmt.Printf("channel: %s  status: %s", v.Label, strings.ToUpper(string(v.Status)))
		if v.CueLabel != "" {
			fmt.Printf("  cue: %s", v.CueLabel)
		}
		if v.CanConfirm && !v.Confirmed {
			fmt.Print("  [confirm?]")
		}
		if v.Confirmed {
			fmt.Print("  [confirmed]")
		}
		fmt.Println()
	case "set":
		handleReceiverSet(a, args, reconnect)
	case "help":
		fmt.Println(receiverHelp)
	default:
		log.Debug("unknown command", "command", args[0])
		fmt.Printf("unknown command %q (try help)\n", args[0])
	}
}

func handleReceiverSet(a *receiver.Adapter, args []string, reconnect chan<- struct{}) {
	if len(args) < 3 {
		fmt.Println("usage: set name|channel|broker <value>")
		return
	}

	s := a.Settings()
	switch args[1] {
	case "name":
		s.Name = strings.Join(args[2:], " ")
	case "channel":
		id, err := strconv.Atoi(args[2])
		if err != nil {
			fmt.Printf("set channel: %q is not a channel\n", args[2])
			return
		}
		s.ChannelID = id
	case "broker":
		s.BrokerIP = args[2]
	default:
		fmt.Println("usage: set name|channel|broker <value>")
		return
	}

	needsReconnect, err := a.ApplySettings(s)
	if err != nil {
		fmt.Printf("set: %v\n", err)
		return
	}
	if needsReconnect {
		reconnect <- struct{}{}
	}
}
