// shipctl is a small command-line client for the shiptrack API.
//
//	shipctl track <shipment-id>
//	shipctl edit -email ana@x.com -password pw123456 -address "12 Elm Street" <shipment-id>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/lmittmann/tint"

	"github.com/ErlanBelekov/shiptrack/internal/client/api"
	"github.com/ErlanBelekov/shiptrack/internal/client/editor"
	"github.com/ErlanBelekov/shiptrack/internal/client/session"
)

// console prints editor notifications and navigation as log lines.
type console struct {
	logger *slog.Logger
}

func (c console) Success(msg string) { c.logger.Info(msg) }
func (c console) Error(msg string) { c.logger.Error(msg) }
func (c console) Navigate(path string) { c.logger.Warn("navigate", "path", path) }

func main() {
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{TimeFormat: time.Kitchen}))

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch os.Args[1] {
	case "track":
		err = runTrack(ctx, os.Args[2:])
	case "edit":
		err = runEdit(ctx, logger, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error("shipctl", "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: shipctl track|edit [flags] <shipment-id>")
}

func defaultBaseURL() string {
	if v := os.Getenv("SHIPTRACK_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

func runTrack(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("track", flag.ExitOnError)
	baseURL := fs.String("url", defaultBaseURL(), "API base URL")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("track: shipment id required")
	}

	v, err := api.New(*baseURL, nil).GetShipment(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	fmt.Printf("Shipment %s\n", v.ID)
	fmt.Printf("  Status:      %s\n", v.ShipmentStatus)
	fmt.Printf("  Destination: %s\n", v.RecipientAddress)
	fmt.Printf("  Contents:    %s (%g kg)\n", v.PackageDescription, v.PackageWeight)
	if v.User != nil {
		fmt.Printf("  Sender:      %s\n", v.User.Address)
	}
	return nil
}

func runEdit(ctx context.Context, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	baseURL := fs.String("url", defaultBaseURL(), "API base URL")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	name := fs.String("name", "", "new recipient name")
	address := fs.String("address", "", "new recipient address")
	description := fs.String("description", "", "new package description")
	weight := fs.String("weight", "", "new package weight in kg")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("edit: shipment id required")
	}
	id := fs.Arg(0)

	sess := session.NewManager()
	client := api.New(*baseURL, sess)

	token, err := client.Login(ctx, *email, *password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	sess.Login(token)

	shipments, err := client.ListShipments(ctx)
	if err != nil {
		return fmt.Errorf("list shipments: %w", err)
	}
	list := editor.NewShipmentList(shipments...)

	var target *api.Shipment
	for _, s := range list.Items() {
		if s.ID == id {
			target = &s
			break
		}
	}
	if target == nil {
		return fmt.Errorf("shipment %s not found", id)
	}

	out := console{logger: logger}
	ed := editor.New(client, sess, list, out, out)
	if err := ed.Open(*target); err != nil {
		return err
	}

	if *name != "" {
		ed.SetRecipientName(*name)
	}
	if *address != "" {
		ed.SetRecipientAddress(*address)
	}
	if *description != "" {
		ed.SetPackageDescription(*description)
	}
	if *weight != "" {
		ed.SetPackageWeight(*weight)
	}

	if !ed.CanSubmit() {
		fe := ed.Errors()
		for _, msg := range []string{fe.RecipientName, fe.RecipientAddress, fe.PackageDescription, fe.PackageWeight} {
			if msg != "" {
				logger.Error(msg)
			}
		}
		ed.Cancel()
		return editor.ErrInvalidInput
	}

	if err := ed.Submit(ctx); err != nil {
		return err
	}

	for _, s := range list.Items() {
		if s.ID == id {
			logger.Info("shipment", "id", s.ID, "recipient", s.RecipientName, "address", s.RecipientAddress,
				"description", s.PackageDescription, "weight_kg", s.PackageWeight, "status", s.ShipmentStatus)
		}
	}
	return nil
}
