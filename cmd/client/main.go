package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"hospital-booking/internal/apiclient"
	"hospital-booking/internal/config"
	"hospital-booking/internal/controller"
	"hospital-booking/internal/health"
	"hospital-booking/internal/logging"
	"hospital-booking/internal/session"
	"hospital-booking/internal/view"
)

func main() {
	cfg := config.LoadClient()
	flag.StringVar(&cfg.APIBaseURL, "api", cfg.APIBaseURL, "booking API base URL")
	flag.StringVar(&cfg.SessionFile, "session", cfg.SessionFile, "session file (file backend)")
	flag.Parse()

	log, err := logging.New(cfg.LogLevel, cfg.LogOutput)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if flag.Arg(0) == "ping" {
		os.Exit(ping(ctx, cfg.HealthAddr))
	}

	storage, closeStorage, err := openStorage(cfg)
	if err != nil {
		log.Fatal("session storage", zap.Error(err))
	}
	defer closeStorage()

	sess, err := session.NewManager(ctx, storage)
	if err != nil {
		log.Fatal("load session", zap.Error(err))
	}

	term := view.NewTerminal(os.Stdin, os.Stdout)
	api := apiclient.New(apiclient.Config{BaseURL: cfg.APIBaseURL, Timeout: cfg.HTTPTimeout}, log)
	ctl := controller.New(api, sess, term, term, controller.Options{TimeLayout: cfg.TimeLayout, Logger: log})

	ctl.Start(ctx)
	repl(ctx, ctl, term)
}

func openStorage(cfg *config.Client) (session.Storage, func(), error) {
	switch cfg.SessionBackend {
	case "", "file":
		return session.NewFileStorage(cfg.SessionFile), func() {}, nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		return session.NewRedisStorage(rdb, session.Key), func() { _ = rdb.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}
}

func ping(ctx context.Context, addr string) int {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	st, err := health.Check(ctx, addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ping:", err)
		return 1
	}
	fmt.Println(st)
	if st != "SERVING" {
		return 1
	}
	return 0
}

func repl(ctx context.Context, ctl *controller.Controller, term *view.Terminal) {
	for {
		term.Prompt(ctl.State().View)
		line, err := term.ReadLine()
		if errors.Is(err, io.EOF) {
			term.Println()
			return
		}
		if err != nil {
			term.Println("read:", err)
			return
		}
		if ctx.Err() != nil {
			return
		}
		if quit := dispatch(ctx, ctl, term, strings.Fields(line)); quit {
			return
		}
	}
}

// dispatch runs one command line; it reports true on quit.
func dispatch(ctx context.Context, ctl *controller.Controller, term *view.Terminal, args []string) bool {
	if len(args) == 0 {
		return false
	}
	cmd, args := strings.ToLower(args[0]), args[1:]

	switch cmd {
	case "quit", "exit":
		return true
	case "help":
		term.Render(ctl.State())
		return false
	}

	var err error
	if ctl.State().View == controller.ViewAuth {
		switch cmd {
		case "register":
			if len(args) != 3 {
				err = usage("register <username> <email> <password>")
				break
			}
			err = ctl.Register(ctx, controller.RegisterInput{Username: args[0], Email: args[1], Password: args[2]})
		case "login":
			if len(args) != 2 {
				err = usage("login <email> <password>")
				break
			}
			err = ctl.Login(ctx, controller.LoginInput{Email: args[0], Password: args[1]})
		default:
			err = fmt.Errorf("unknown command %q; try help", cmd)
		}
	} else {
		switch cmd {
		case "doctors":
			ctl.LoadDoctors(ctx, strings.Join(args, " "))
		case "appointments":
			ctl.LoadAppointments(ctx)
		case "book":
			in := controller.BookingInput{}
			if len(args) > 0 {
				if in.DoctorID, err = strconv.ParseInt(args[0], 10, 64); err != nil {
					err = usage("book <doctor-id> <YYYY-MM-DDTHH:MM>")
					break
				}
			}
			if len(args) > 1 {
				in.Time = args[1]
			}
			err = ctl.CreateAppointment(ctx, in)
		case "cancel":
			var id int64
			if len(args) == 1 {
				id, err = strconv.ParseInt(args[0], 10, 64)
			}
			if len(args) != 1 || err != nil {
				err = usage("cancel <appointment-id>")
				break
			}
			ctl.CancelAppointment(ctx, id)
		case "logout":
			ctl.Logout(ctx)
		default:
			err = fmt.Errorf("unknown command %q; try help", cmd)
		}
	}
	if err != nil {
		term.Println(err)
	}
	return false
}

func usage(u string) error {
	return errors.New("usage: " + u)
}
