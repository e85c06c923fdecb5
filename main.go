package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"sobesednik/internal/commands"
	"sobesednik/internal/config"
	"sobesednik/internal/credstore"
	"sobesednik/internal/models"
	"sobesednik/internal/session"

	"golang.org/x/sync/errgroup"
)

func run(ctx context.Context) error {
	loginURL := flag.Bool("login-url", false, "Print the Google OAuth URL to authorize in a browser")
	login := flag.String("login", "", "Exchange an OAuth callback code for a credential")
	logout := flag.Bool("logout", false, "Log out and clear the stored credential")
	whoami := flag.Bool("whoami", false, "Print the logged-in user")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	switch {
	case *loginURL:
		return commands.LoginURL(ctx, cfg)
	case *login != "":
		return commands.Login(ctx, cfg, *login)
	case *logout:
		return commands.Logout(ctx, cfg)
	case *whoami:
		return commands.WhoAmI(ctx, cfg)
	}

	key, err := credstore.LoadOrCreateKey(cfg.VaultKeyFile)
	if err != nil {
		return err
	}
	vault, err := credstore.Open(cfg.VaultFile, key)
	if err != nil {
		return err
	}
	defer func() { _ = vault.Close() }()

	sess, err := session.New(cfg, vault)
	if err != nil {
		return err
	}
	if _, ok := sess.CurrentUser(); !ok {
		return fmt.Errorf("not logged in, run with -login-url first")
	}

	sess.OnMessage(func(msg models.Message) {
		fmt.Printf("[%s] %s: %s\n", msg.CreatedAt.Format("15:04"), msg.Sender.DisplayName, msg.Content)
	})
	sess.OnNotice(func(notice string) {
		fmt.Printf("! server: %s\n", notice)
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	sess.OnLoggedOut(func() {
		fmt.Println("Session expired, please log in again.")
		cancel()
	})

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return sess.Run(gCtx)
	})

	g.Go(func() error {
		sess.Connect()
		return inputLoop(gCtx, sess)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// inputLoop is a thin line-mode driver around the engine. Plain lines
// go out as chat messages; slash commands control the session.
func inputLoop(ctx context.Context, sess *session.Session) error {
	fmt.Println("Commands: /rooms, /join <id>, /history, /typing, /connect, /disconnect, /quit")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case line == "/quit":
			return context.Canceled
		case line == "/connect":
			sess.Connect()
		case line == "/disconnect":
			sess.Disconnect()
		case line == "/rooms":
			for _, room := range sess.Rooms().List(ctx) {
				fmt.Printf("  %s  %s (%d members)\n", room.ID, room.Name, room.MemberCount)
			}
		case strings.HasPrefix(line, "/join "):
			sess.SelectRoom(strings.TrimSpace(strings.TrimPrefix(line, "/join ")))
		case line == "/history":
			for _, msg := range currentMessages(sess) {
				fmt.Printf("[%s] %s: %s\n", msg.CreatedAt.Format("15:04"), msg.Sender.DisplayName, msg.Content)
			}
		case line == "/typing":
			fmt.Printf("typing: %s\n", strings.Join(currentTyping(sess), ", "))
		case strings.HasPrefix(line, "/"):
			fmt.Printf("unknown command %q\n", line)
		default:
			sess.TypingInput(line)
			sess.SendChat(line)
		}
	}
	return scanner.Err()
}

func currentMessages(sess *session.Session) []models.Message {
	room, ok := currentRoom(sess)
	if !ok {
		return nil
	}
	return sess.Messages(room)
}

func currentTyping(sess *session.Session) []string {
	room, ok := currentRoom(sess)
	if !ok {
		return nil
	}
	return sess.TypingUsers(room)
}

func currentRoom(sess *session.Session) (string, bool) {
	id := sess.CurrentRoom()
	return id, id != ""
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Application error: %v", err)
	}
}
