// Command profanity is a minimal line-oriented driver for the session
// package: it reads "/command arg..." lines from stdin and prints
// Callbacks events to stdout. The full terminal UI (windows, tabs,
// key bindings) is out of this core's scope; this is the thin
// exercising harness that proves the command surface end to end.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/AriadnaRaffo/profanity-go/internal/config"
	"github.com/AriadnaRaffo/profanity-go/internal/logging"
	"github.com/AriadnaRaffo/profanity-go/internal/session"
)

type consoleCallbacks struct{}

func (consoleCallbacks) LoginSuccess(account string)          { fmt.Printf("-- logged in as %s\n", account) }
func (consoleCallbacks) LoginFailed(account string, err error) { fmt.Printf("-- login failed: %v\n", err) }
func (consoleCallbacks) LostConnection(account string, err error) {
	fmt.Printf("-- connection lost: %v\n", err)
}

func (consoleCallbacks) ContactOnline(jid string, presence session.SelfPresence, status string) {
	fmt.Printf("-- %s is now %s (%s)\n", jid, presence, status)
}
func (consoleCallbacks) ContactOffline(jid string) { fmt.Printf("-- %s went offline\n", jid) }

func (consoleCallbacks) IncomingMessage(from, body string) { fmt.Printf("%s: %s\n", from, body) }
func (consoleCallbacks) RoomMessage(room, nick, body string) {
	fmt.Printf("[%s] %s: %s\n", room, nick, body)
}
func (consoleCallbacks) TypingIndicator(from string, state session.ChatState) {
	fmt.Printf("-- %s is %s\n", from, state)
}

func (consoleCallbacks) RosterReplaced() { fmt.Println("-- roster updated") }

func (consoleCallbacks) SubscriptionRequestReceived(from string) {
	fmt.Printf("-- subscription request from %s (/allow %s or /deny %s)\n", from, from, from)
}
func (consoleCallbacks) SubscriptionDecisionResult(jid string, allowed bool) {
	fmt.Printf("-- subscription to %s %s\n", jid, map[bool]string{true: "allowed", false: "denied"}[allowed])
}

func (consoleCallbacks) DiscoInfoResult(from string, identities []session.CapIdentity, features []string) {
	fmt.Printf("-- disco#info from %s: %d identities, %d features\n", from, len(identities), len(features))
}
func (consoleCallbacks) DiscoItemsResult(from string, items []string) {
	fmt.Printf("-- disco#items from %s: %v\n", from, items)
}
func (consoleCallbacks) RoomListResult(service string, rooms []string) {
	fmt.Printf("-- rooms at %s: %v\n", service, rooms)
}

func (consoleCallbacks) SoftwareVersionResult(from, name, version, os string) {
	fmt.Printf("-- %s is running %s %s %s\n", from, name, version, os)
}

func (consoleCallbacks) IQError(id string, condition string) {
	fmt.Printf("-- request %s failed: %s\n", id, condition)
}

func (consoleCallbacks) DeliveryReceipt(from, messageID string) {
	fmt.Printf("-- %s delivered %s\n", from, messageID)
}
func (consoleCallbacks) ReadMarker(from, messageID string) {
	fmt.Printf("-- %s read %s\n", from, messageID)
}
func (consoleCallbacks) RoomSubjectChanged(room, subject, by string) {
	fmt.Printf("-- %s subject set by %s: %s\n", room, by, subject)
}

func main() {
	jidFlag := os.Getenv("PROFANITY_JID")
	passFlag := os.Getenv("PROFANITY_PASSWORD")
	if jidFlag == "" || passFlag == "" {
		fmt.Fprintln(os.Stderr, "set PROFANITY_JID and PROFANITY_PASSWORD")
		os.Exit(1)
	}

	log := logging.NewStderr(logging.LevelInfo)
	caps := session.NewCapabilityCache()
	sess := session.NewSession(consoleCallbacks{}, session.NoOpHooks{}, caps, log)

	account := session.Account{JID: jidFlag, Password: passFlag, Options: config.DefaultOptions()}
	if err := sess.Connect(account); err != nil {
		fmt.Fprintf(os.Stderr, "connect: %v\n", err)
		os.Exit(1)
	}

	go sess.Run()
	dispatchCommands(sess)
}

func dispatchCommands(sess *session.Session) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "/") {
			continue
		}
		fields := strings.Fields(line[1:])
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]
		var err error
		switch cmd {
		case "msg":
			if len(args) >= 2 {
				_, err = sess.SendMessage(args[0], strings.Join(args[1:], " "))
			}
		case "join":
			if len(args) >= 2 {
				err = sess.JoinRoom(args[0], args[1], "")
			}
		case "leave":
			if len(args) >= 1 {
				err = sess.LeaveRoom(args[0])
			}
		case "sub":
			if len(args) >= 1 {
				err = sess.Subscribe(args[0])
			}
		case "allow":
			if len(args) >= 1 {
				err = sess.AllowSubscription(args[0])
			}
		case "deny":
			if len(args) >= 1 {
				err = sess.DenySubscription(args[0])
			}
		case "who":
			prefix := ""
			if len(args) >= 1 {
				prefix = args[0]
			}
			for _, c := range sess.FindContactsByPrefix(prefix) {
				fmt.Printf("-- %s (%s)\n", c.JID, c.Subscription)
			}
		case "info":
			fmt.Printf("-- %s is %s\n", sess.SelfBareJID(), sess.SelfPresence())
		case "subs":
			for _, r := range sess.SubscriptionRequests() {
				fmt.Printf("-- pending request from %s\n", r.From)
			}
		case "occupants":
			if len(args) >= 1 {
				for _, o := range sess.RoomRoster(args[0]) {
					fmt.Printf("-- %s (%s/%s)\n", o.Nick, o.Affiliation, o.Role)
				}
			}
		case "rooms":
			for _, r := range sess.Rooms() {
				fmt.Printf("-- %s as %s\n", r.JID, r.Nick)
			}
		case "autoaway":
			if len(args) >= 2 {
				var minutes int
				if _, scanErr := fmt.Sscanf(args[1], "%d", &minutes); scanErr == nil {
					err = sess.SetAutoaway(args[0], minutes, strings.Join(args[2:], " "))
				}
			}
		case "quit":
			_ = sess.Disconnect()
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "!! %s: %v\n", cmd, err)
		}
	}
}
