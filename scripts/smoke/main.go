// Command smoke probes a running API instance through the typed client:
// admin login, catalog listing, request register and analytics overview.
// Exits non-zero when any critical probe fails.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Rahi-Raushan/stu-mag-api/pkg/client"
)

type probe struct {
	Name     string
	Critical bool
	Run      func(ctx context.Context) error
}

func main() {
	var (
		baseURL  string
		email    string
		password string
		timeout  time.Duration
	)

	flag.StringVar(&baseURL, "base", "http://localhost:8080/api", "API base URL including prefix")
	flag.StringVar(&email, "email", "", "Admin email")
	flag.StringVar(&password, "password", "", "Admin password")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "Per-call timeout")
	flag.Parse()

	if email == "" || password == "" {
		log.Fatal("-email and -password are required")
	}

	api := client.New(baseURL, client.NewSession(), client.WithTimeout(timeout))
	ctx := context.Background()

	if _, err := api.Login(ctx, email, password); err != nil {
		log.Fatalf("login failed: %v", err)
	}

	probes := []probe{
		{Name: "list courses", Critical: true, Run: func(ctx context.Context) error {
			_, err := api.Courses(ctx)
			return err
		}},
		{Name: "list students", Critical: true, Run: func(ctx context.Context) error {
			_, err := api.Students(ctx)
			return err
		}},
		{Name: "list requests", Critical: true, Run: func(ctx context.Context) error {
			_, err := api.Requests(ctx)
			return err
		}},
		{Name: "analytics overview", Critical: false, Run: func(ctx context.Context) error {
			_, err := api.AnalyticsOverview(ctx)
			return err
		}},
	}

	failed := 0
	fmt.Println("Smoke Report")
	fmt.Println("============")
	for _, p := range probes {
		start := time.Now()
		err := p.Run(ctx)
		status := "OK"
		if err != nil {
			status = "FAIL"
			if p.Critical {
				failed++
			}
		}
		fmt.Printf("[%s] %s (%s)\n", status, p.Name, time.Since(start))
		if err != nil {
			fmt.Printf("  Error: %v\n", err)
		}
	}

	if failed > 0 {
		fmt.Printf("Critical failures: %d\n", failed)
		os.Exit(1)
	}
}
