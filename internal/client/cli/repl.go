package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Camera(ctx context.Context, dir string) error
	Photo(ctx context.Context, path string) error
	Manual(ctx context.Context, input string) error
	Status(ctx context.Context) error
	Sync(ctx context.Context) error
	Queue(ctx context.Context) error
	Purge(ctx context.Context) error
	Delete(ctx context.Context, id string) error
	Recent(ctx context.Context) error
	Inventory(ctx context.Context, filter string) error
	Export(ctx context.Context, path string) error
}

const helpText = `Available commands:
  login | logout        set or forget the access token
  camera <dir>          scan camera frames from a directory
  photo <file>          read a VIN from a photo
  manual [vin]          enter a VIN by hand
  status                connectivity, sync phase and queue depth
  sync                  push queued VINs now
  queue                 list local records
  purge                 remove synced records older than 30 days
  delete <id>           remove one local record
  recent                last 5 VINs in the remote inventory
  inventory [filter]    remote inventory, optionally filtered
  export [file]         export the remote inventory as CSV
  exit | quit           leave the program`

// runREPL reads a line at a time, dispatches the first token as the command
// and reports command errors without leaving the loop. It returns on EOF or
// on exit/quit.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("vin %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]
		arg := strings.Join(args, " ")

		var err error
		switch cmd {
		case "help":
			printlnFn(helpText)

		case "login":
			err = a.Login(ctx)

		case "logout":
			err = a.Logout(ctx)

		case "camera":
			if arg == "" {
				printlnFn("Usage: camera <dir>")
				continue
			}
			err = a.Camera(ctx, arg)

		case "photo":
			if arg == "" {
				printlnFn("Usage: photo <file>")
				continue
			}
			err = a.Photo(ctx, arg)

		case "manual":
			err = a.Manual(ctx, arg)

		case "status":
			err = a.Status(ctx)

		case "sync":
			err = a.Sync(ctx)

		case "queue":
			err = a.Queue(ctx)

		case "purge":
			err = a.Purge(ctx)

		case "delete":
			if arg == "" {
				printlnFn("Usage: delete <id>")
				continue
			}
			err = a.Delete(ctx, arg)

		case "recent":
			err = a.Recent(ctx)

		case "inventory":
			err = a.Inventory(ctx, arg)

		case "export":
			err = a.Export(ctx, arg)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}
