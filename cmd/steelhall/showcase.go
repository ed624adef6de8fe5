package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/steelhall/steelhall/internal/carousel"
	"github.com/steelhall/steelhall/internal/config"
	"github.com/steelhall/steelhall/internal/models"
)

var showcaseCmd = &cobra.Command{
	Use:   "showcase",
	Short: "Rotate the featured listings in the terminal",
	Long: `Fetch the featured listings from the server and rotate them the way the
homepage carousel does. Press Enter to pause or resume, Ctrl-C to stop.`,
	Run: func(cmd *cobra.Command, args []string) {
		c := mustClient(false)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		items, interval, err := c.Listings(ctx)
		if err != nil {
			fail(err)
		}
		if len(items) == 0 {
			fmt.Println("No featured listings")
			return
		}
		if interval <= 0 {
			interval = config.GetDuration("carousel.interval")
		}

		cfg := carousel.Config{
			ItemCount:     len(items),
			CardWidth:     config.GetInt("carousel.card_width"),
			ViewportWidth: config.GetInt("carousel.viewport_width"),
			Increment:     config.GetInt("carousel.increment"),
			Interval:      interval,
		}
		if cfg.CardWidth <= 0 {
			cfg.CardWidth = carousel.DefaultIncrement
		}
		car := carousel.New(cfg)
		car.OnChange(func(s carousel.State) {
			fmt.Print(renderStrip(items, cfg, s))
		})
		fmt.Print(renderStrip(items, cfg, car.State()))

		car.Start()
		defer car.Stop()

		go toggleOnEnter(ctx, car)
		<-ctx.Done()
		fmt.Println()
	},
}

// toggleOnEnter pauses and resumes the carousel on every line read
func toggleOnEnter(ctx context.Context, car *carousel.Carousel) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		car.TogglePause()
	}
}

// renderStrip draws the cards visible in the viewport on one line
func renderStrip(items []models.CarouselItem, cfg carousel.Config, s carousel.State) string {
	first := s.Position / cfg.CardWidth
	last := (s.Position + cfg.ViewportWidth - 1) / cfg.CardWidth
	if last >= len(items) {
		last = len(items) - 1
	}
	if last < first {
		last = first
	}

	var b strings.Builder
	b.WriteString("\r\033[K")
	for i := first; i <= last && i < len(items); i++ {
		item := items[i]
		fmt.Fprintf(&b, "[ %s  € %.0f ] ", item.Title, item.Price)
	}
	if s.Paused {
		b.WriteString("(paused)")
	}
	return b.String()
}

func init() {
	rootCmd.AddCommand(showcaseCmd)
}
