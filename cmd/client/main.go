/*
Package main is the terminal client for the Ramblur chat server.

It loads (or creates) the durable device identity, optionally registers a
display name, opens a chat session, and bridges stdin lines to the session
layer. Incoming frames are rendered to stdout; chat senders are colored with
the same deterministic name-to-color mapping every client uses.
*/
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"ramblur/internal/app/identity"
	"ramblur/internal/app/session"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8000", "server base URL")
	identityPath := flag.String("identity", defaultIdentityPath(), "path to the identity file")
	registerName := flag.String("register", "", "register this display name before connecting")
	flag.Parse()

	// Session internals log through the global logger; keep only warnings on
	// stderr so the chat itself stays readable.
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger().Level(zerolog.WarnLevel)

	if err := run(*serverURL, *identityPath, *registerName); err != nil {
		fmt.Fprintf(os.Stderr, "ramblur: %v\n", err)
		os.Exit(1)
	}
}

func run(serverURL, identityPath, registerName string) error {
	store := identity.NewStore(identityPath)
	id, err := store.Load()
	if err != nil {
		return err
	}

	if registerName != "" {
		if err := identity.Register(context.Background(), serverURL, id.DeviceID, registerName); err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}
		if err := store.SaveUsername(registerName); err != nil {
			return err
		}
		id.Username = registerName
	}

	conn := session.NewConnection(serverURL, id.DeviceID, id.Username, session.SinkFunc(render))
	if err := conn.Connect(context.Background()); err != nil {
		return err
	}
	defer conn.Close()

	fmt.Println("Commands: /create, /join CODE, /global, /img PATH, /who, /quit")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "/quit":
			return nil
		case line == "/create":
			conn.CreateRoom()
		case line == "/global":
			conn.JoinGlobal()
		case line == "/who":
			printPresence(conn.PresenceSnapshot())
		case strings.HasPrefix(line, "/join "):
			conn.JoinRoom(strings.TrimPrefix(line, "/join "))
		case strings.HasPrefix(line, "/img "):
			sendImage(conn, strings.TrimSpace(strings.TrimPrefix(line, "/img ")))
		case line != "":
			conn.SendMessage(line)
		}
	}

	return scanner.Err()
}

// render writes one classified frame to stdout.
func render(f session.Frame) {
	switch fr := f.(type) {
	case session.Chat:
		marker := " "
		if fr.Side == session.SideSelf {
			marker = "*"
		}
		fmt.Printf("%s%s: %s\n", marker, colorize(fr.Sender), fr.Text)
	case session.Image:
		if fr.Side == session.SideSelf {
			fmt.Println("[image sent]")
			return
		}
		saveImage(fr.Data)
	case session.Presence:
		fmt.Printf("[%d online]\n", len(fr.Online))
	case session.System:
		fmt.Println(fr.Text)
	}
}

// colorize wraps a sender name in a truecolor escape derived from the
// deterministic per-name color.
func colorize(name string) string {
	r, g, b := session.ColorOf(name).RGB()
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm%s\x1b[0m", r, g, b, name)
}

func printPresence(p session.Presence) {
	fmt.Printf("Online (%d): %s\n", len(p.Online), strings.Join(p.Online, ", "))
	if len(p.All) > len(p.Online) {
		fmt.Printf("Registered (%d): %s\n", len(p.All), strings.Join(p.All, ", "))
	}
}

func sendImage(conn *session.Connection, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ramblur: cannot read image: %v\n", err)
		return
	}

	if !conn.SendImage(data) {
		fmt.Fprintln(os.Stderr, "ramblur: image was not sent")
	}
}

// saveImage writes a received image blob to a temp file and prints where.
func saveImage(data []byte) {
	f, err := os.CreateTemp("", "ramblur-*.img")
	if err != nil {
		fmt.Fprintf(os.Stderr, "ramblur: cannot save image: %v\n", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		fmt.Fprintf(os.Stderr, "ramblur: cannot save image: %v\n", err)
		return
	}
	fmt.Printf("[image received, saved to %s]\n", f.Name())
}

// defaultIdentityPath puts the identity file under the user config dir,
// falling back to the working directory when that is unavailable.
func defaultIdentityPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "ramblur-identity.json"
	}
	return filepath.Join(dir, "ramblur", "identity.json")
}
