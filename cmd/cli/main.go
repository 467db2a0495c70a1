package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"echolearn-client/internal/bootstrap"
	"echolearn-client/internal/config"
	"echolearn-client/internal/constant"
	"echolearn-client/internal/entity"
	"echolearn-client/internal/pkg/validation"
	"echolearn-client/internal/service"

	"github.com/fatih/color"
)

var (
	routeColor     = color.New(color.FgCyan)
	userColor      = color.New(color.FgGreen, color.Bold)
	assistantColor = color.New(color.FgMagenta)
	errorColor     = color.New(color.FgRed)
	infoColor      = color.New(color.FgYellow)
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Bootstrap Dependencies (Container)
	nav := service.NavigatorFunc(func(route string) {
		routeColor.Printf("-> %s\n", route)
	})
	container := bootstrap.NewContainer(cfg, nav)
	defer container.Logger.Sync()

	ctx := context.Background()

	// 3. Restore persisted session and chat history
	container.AuthService.Initialize(ctx)
	if container.AuthService.IsAuthenticated() {
		user := container.AuthService.CurrentUser()
		infoColor.Printf("Signed in as %s (%s)\n", user.Username, user.Role)
		_ = container.ChatService.HydrateFromHistory(ctx, "")
	}

	fmt.Println("EchoLearn — type 'help' for commands, anything else is sent to the tutor.")
	repl(ctx, container)
}

func repl(ctx context.Context, c *bootstrap.Container) {
	scanner := bufio.NewScanner(os.Stdin)
	var pendingAttachments []entity.Attachment

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "help":
			printHelp()

		case "quit", "exit":
			return

		case "login":
			if len(args) != 2 {
				errorColor.Println("usage: login <username> <password>")
				continue
			}
			reportErr(c.AuthService.Login(ctx, args[0], args[1]))

		case "signup":
			if len(args) != 3 {
				errorColor.Println("usage: signup <username> <email> <password>")
				continue
			}
			reportErr(c.AuthService.Signup(ctx, args[0], args[1], args[2]))

		case "logout":
			c.AuthService.Logout()

		case "whoami":
			if user := c.AuthService.CurrentUser(); user != nil {
				fmt.Printf("%s <%s> role=%s location=%s\n", user.Username, user.Email, user.Role, user.Location)
			} else {
				infoColor.Println("not signed in")
			}

		case "new":
			session := c.ChatService.CreateSession()
			infoColor.Printf("created %s\n", session.Id)

		case "sessions":
			for _, s := range c.ChatService.Sessions() {
				marker := " "
				if cur := c.ChatService.CurrentSession(); cur != nil && cur.Id == s.Id {
					marker = "*"
				}
				fmt.Printf("%s %s  %s (%d messages)\n", marker, s.Id, s.Title, len(s.Messages))
			}

		case "open":
			if len(args) != 1 {
				errorColor.Println("usage: open <session-id>")
				continue
			}
			c.ChatService.SelectSession(args[0])

		case "year":
			c.ChatService.SetYear(argOrEmpty(args))

		case "semester":
			c.ChatService.SetSemester(argOrEmpty(args))

		case "subject":
			c.ChatService.SetSubject(argOrEmpty(args))

		case "subjects":
			sel := c.ChatService.CurrentSelection()
			for _, s := range constant.FilterSubjects(sel.Year, sel.Semester) {
				fmt.Printf("%s  %s (%s)\n", s.Id, s.Name, s.Code)
			}

		case "attach":
			if len(args) != 1 {
				errorColor.Println("usage: attach <path>")
				continue
			}
			pendingAttachments = append(pendingAttachments, entity.Attachment{
				Id:   fmt.Sprintf("att_%s", filepath.Base(args[0])),
				Name: filepath.Base(args[0]),
				Type: "file",
				Path: args[0],
			})
			infoColor.Printf("attached %s\n", args[0])

		case "clear":
			c.ChatService.ClearCurrentSession()

		case "export":
			filename, content, err := c.ChatService.ExportCurrentSession()
			if err != nil {
				reportErr(err)
				continue
			}
			if err := os.WriteFile(filename, []byte(content), 0o644); err != nil {
				reportErr(err)
				continue
			}
			infoColor.Printf("exported to %s\n", filename)

		case "notifs":
			for _, n := range c.NotificationService.Notifications() {
				marker := "·"
				if !n.Read {
					marker = "!"
				}
				fmt.Printf("%s [%s] %s\n", marker, n.Type, n.Message)
			}
			infoColor.Printf("%d unread\n", c.NotificationService.UnreadCount())

		case "read-all":
			c.NotificationService.MarkAllAsRead()

		case "dashboard":
			data := c.AdminService.LoadDashboard(ctx)
			if data.Metrics != nil {
				fmt.Printf("users=%d queries=%d pdfs=%d\n", data.Metrics.TotalUsers, data.Metrics.TotalQueries, data.Metrics.TotalPDFs)
			}
			for _, p := range data.QueriesOverTime {
				fmt.Printf("%s: %d\n", p.Name, p.Value)
			}
			for _, d := range data.PDFs {
				fmt.Printf("%s (%d pages)\n", d.Filename, d.Pages)
			}

		case "users":
			users, err := c.AdminService.GetAllUsers(ctx)
			if err != nil {
				reportErr(err)
				continue
			}
			for _, u := range users {
				fmt.Printf("%s <%s> %s\n", u.Username, u.Email, u.Role)
			}

		case "locate":
			if len(args) != 2 {
				errorColor.Println("usage: locate <lat> <lon>")
				continue
			}
			lat, latErr := strconv.ParseFloat(args[0], 64)
			lon, lonErr := strconv.ParseFloat(args[1], 64)
			if latErr != nil || lonErr != nil {
				errorColor.Println("coordinates must be numbers")
				continue
			}
			location, err := c.LocationService.ReverseGeocode(ctx, lat, lon)
			if err != nil {
				reportErr(err)
				continue
			}
			fmt.Println(location)

		default:
			// Anything that isn't a command goes to the tutor.
			sendMessage(ctx, c, line, pendingAttachments)
			pendingAttachments = nil
		}
	}
}

func sendMessage(ctx context.Context, c *bootstrap.Container, content string, attachments []entity.Attachment) {
	userColor.Printf("[you] ")
	fmt.Println(content)

	err := c.ChatService.SendMessage(ctx, content, attachments)
	if errors.Is(err, service.ErrNoActiveSession) {
		// A session was just created for us; resubmit.
		err = c.ChatService.SendMessage(ctx, content, attachments)
	}
	if err != nil {
		reportErr(err)
		return
	}

	session := c.ChatService.CurrentSession()
	if session == nil || len(session.Messages) == 0 {
		return
	}
	last := session.Messages[len(session.Messages)-1]
	if last.Role == entity.MessageRoleAssistant {
		assistantColor.Printf("[tutor] ")
		fmt.Println(last.Content)
		for _, img := range last.Images {
			infoColor.Printf("  image: %s\n", img)
		}
	}
}

func reportErr(err error) {
	if err == nil {
		return
	}
	var fieldErrs validation.FieldErrors
	if errors.As(err, &fieldErrs) {
		for field, msg := range fieldErrs {
			errorColor.Printf("%s: %s\n", field, msg)
		}
		return
	}
	errorColor.Println(err.Error())
}

func argOrEmpty(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func printHelp() {
	fmt.Println(`commands:
  login <username> <password>     sign in
  signup <username> <email> <pw>  create an account
  logout / whoami
  new / sessions / open <id>      manage chat sessions
  year|semester|subject <value>   set filters (locked after first message)
  subjects                        list subjects for the current filters
  attach <path>                   attach a file to the next message
  clear / export                  clear or download the current session
  notifs / read-all               notifications
  dashboard / users               admin views
  locate <lat> <lon>              resolve coordinates to a place
  quit`)
}
