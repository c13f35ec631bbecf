package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/orderdesk/go-chatbot-client/auth"
	"github.com/orderdesk/go-chatbot-client/authstate"
	"github.com/orderdesk/go-chatbot-client/chat"
	"github.com/orderdesk/go-chatbot-client/credentials"
	"github.com/orderdesk/go-chatbot-client/httpclient"
	"github.com/orderdesk/go-chatbot-client/internal/apierrors"
	"github.com/orderdesk/go-chatbot-client/internal/config"
	"github.com/orderdesk/go-chatbot-client/orders"
)

const configFileEnvVar = "CHATBOT_CONFIG"

func loadConfig() (config.Config, error) {
	if path := os.Getenv(configFileEnvVar); path != "" {
		return config.NewFromFile(path)
	}
	return config.New(), nil
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %s\n", apierrors.MessageOf(err))
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	configureLogging(cfg.GetLogLevel(), cfg.GetDebug())

	store, err := credentials.New(cfg)
	if err != nil {
		return fmt.Errorf("credential store: %w", err)
	}

	broadcaster := authstate.NewBroadcaster()
	api := httpclient.New(cfg.GetAPIURL(),
		httpclient.WithTimeout(cfg.GetRequestTimeout()),
		httpclient.WithRetryAttempts(cfg.GetRetryAttempts()),
		httpclient.WithTokenSource(broadcaster),
	)

	manager, err := auth.NewSessionManager(auth.Deps{Store: store, Client: api, State: broadcaster})
	if err != nil {
		return err
	}
	chatService, err := chat.NewService(api, broadcaster)
	if err != nil {
		return err
	}
	orderService, err := orders.NewService(api, broadcaster)
	if err != nil {
		return err
	}

	manager.Restore()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		return nil
	}

	app := &app{manager: manager, chat: chatService, orders: orderService, state: broadcaster}
	return app.dispatch(ctx, args[0], args[1:])
}

type app struct {
	manager *auth.SessionManager
	chat    *chat.Service
	orders  *orders.Service
	state   *authstate.Broadcaster
}

func (a *app) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.login(ctx, args)
	case "register":
		return a.register(ctx, args)
	case "logout":
		a.manager.Logout(ctx)
		fmt.Println("Logged out.")
		return nil
	case "whoami":
		return a.whoami()
	case "chat":
		return a.sendMessage(ctx, args)
	case "orders":
		return a.listOrders(ctx, args)
	case "order":
		return a.showOrder(ctx, args)
	case "track":
		return a.trackOrder(ctx, args)
	case "health":
		return a.health(ctx)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: chatbot login <email> <password>")
	}
	session, err := a.manager.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Printf("Logged in as %s (%s)\n", session.FullName(), session.Email)
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	if len(args) != 4 {
		return errors.New("usage: chatbot register <email> <password> <first-name> <last-name>")
	}
	session, err := a.manager.Register(ctx, args[0], args[1], args[2], args[3])
	if err != nil {
		return err
	}
	fmt.Printf("Registered and logged in as %s (%s)\n", session.FullName(), session.Email)
	return nil
}

func (a *app) whoami() error {
	state := a.state.Current()
	if !state.IsAuthenticated {
		fmt.Println("Not logged in.")
		return nil
	}
	fmt.Printf("%s <%s> (customer %d)\n", state.User.FullName(), state.User.Email, state.User.CustomerID)
	if exp := state.User.ExpiresAt(); !exp.IsZero() {
		fmt.Printf("Session expires %s\n", exp.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func (a *app) sendMessage(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: chatbot chat <message>")
	}
	resp, err := a.chat.SendMessage(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Println(resp.Message)
	zlog.Debug().Str("intent", resp.Intent).Float64("confidence", resp.Confidence).Msg("Chat reply metadata")
	return nil
}

func (a *app) listOrders(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("orders", flag.ContinueOnError)
	limit := fs.Int("limit", 10, "maximum number of orders")
	status := fs.String("status", "", "filter by status (PROCESSING, SHIPPED, DELIVERED, CANCELLED)")
	recent := fs.Bool("recent", false, "orders from the last 30 days")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		list []orders.Order
		err  error
	)
	switch {
	case *status != "":
		list, err = a.orders.OrdersByStatus(ctx, *status)
	case *recent:
		list, err = a.orders.RecentOrders(ctx)
	default:
		list, err = a.orders.MyOrders(ctx, *limit)
	}
	if err != nil {
		return err
	}

	if len(list) == 0 {
		fmt.Println("No orders found.")
		return nil
	}
	for _, o := range list {
		printOrder(o)
	}
	return nil
}

func (a *app) showOrder(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: chatbot order <order-number>")
	}
	order, err := a.orders.OrderByNumber(ctx, args[0])
	if err != nil {
		return err
	}
	printOrder(*order)
	fmt.Printf("  Shipping: %s\n", order.ShippingAddress)
	return nil
}

func (a *app) trackOrder(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: chatbot track <order-number>")
	}
	tracking, err := a.orders.Track(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", tracking.OrderNumber, tracking.Status)
	if tracking.Carrier != "" {
		fmt.Printf("  Carrier:  %s (%s)\n", tracking.Carrier, tracking.TrackingNumber)
	}
	if tracking.CurrentLocation != "" {
		fmt.Printf("  Location: %s\n", tracking.CurrentLocation)
	}
	if tracking.EstimatedDelivery != "" {
		fmt.Printf("  ETA:      %s\n", tracking.EstimatedDelivery)
	}
	if tracking.Message != "" {
		fmt.Printf("  %s\n", tracking.Message)
	}
	return nil
}

func (a *app) health(ctx context.Context) error {
	fmt.Printf("chat:   %s\n", healthWord(a.chat.Health(ctx)))
	fmt.Printf("orders: %s\n", healthWord(a.orders.Health(ctx)))
	return nil
}

func healthWord(ok bool) string {
	if ok {
		return "ok"
	}
	return "unavailable"
}

func printOrder(o orders.Order) {
	fmt.Printf("%-12s %-11s %10.2f  %s\n", o.OrderNumber, o.Status, o.TotalAmount, o.CreatedDate)
}

func usage() {
	myFigure := figure.NewFigure("Order Chatbot", "cybermedium", true)
	myFigure.Print()
	fmt.Println()
	fmt.Println("Usage: chatbot <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  login <email> <password>")
	fmt.Println("  register <email> <password> <first-name> <last-name>")
	fmt.Println("  logout")
	fmt.Println("  whoami")
	fmt.Println("  chat <message>")
	fmt.Println("  orders [-limit N] [-status S] [-recent]")
	fmt.Println("  order <order-number>")
	fmt.Println("  track <order-number>")
	fmt.Println("  health")
}

func configureLogging(level string, debugMode bool) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(parsed)
	if debugMode {
		zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
