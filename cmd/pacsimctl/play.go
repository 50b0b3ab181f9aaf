package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"

	"pacsim/internal/controller"
	"pacsim/internal/game"
	"pacsim/internal/interactive"
	"pacsim/internal/maze"
	"pacsim/internal/scape"
	"pacsim/internal/spectate"
)

// player is the strategy steering the player for one episode plus the
// handles the caller needs after the episode is built.
type player struct {
	strategy controller.Strategy
	human    *controller.Human
	pilot    *scape.Pilot
}

func (p player) attach(ep *game.Episode) {
	if p.pilot != nil {
		p.pilot.Attach(ep)
	}
}

func (p player) err() error {
	if p.pilot != nil {
		return p.pilot.Err()
	}
	return nil
}

func newPlayer(ctx context.Context, mode, genomeID string, sf storeFlags) (player, error) {
	switch mode {
	case "human":
		h := controller.NewHuman()
		return player{strategy: h, human: h}, nil
	case "bot":
		return player{strategy: controller.NewBot(controller.Plan)}, nil
	case "genome":
		client, err := sf.open(0)
		if err != nil {
			return player{}, err
		}
		defer client.Close()
		cortex, err := client.LoadCortex(ctx, genomeID, genomeID == "")
		if err != nil {
			return player{}, err
		}
		pilot := scape.NewPilot(cortex)
		return player{strategy: pilot, pilot: pilot}, nil
	default:
		return player{}, fmt.Errorf("unsupported mode: %s", mode)
	}
}

func newEpisode(blueprint, difficulty string, p player, seed int64) (*game.Episode, error) {
	bp, err := maze.Named(blueprint)
	if err != nil {
		return nil, err
	}
	d, err := controller.ParseDifficulty(difficulty)
	if err != nil {
		return nil, err
	}
	cfg := game.DefaultConfig(bp, p.strategy)
	cfg.Difficulty = d
	if len(bp.FindAll(maze.SymbolGhost)) == 0 {
		cfg.GhostCount = 0
	}
	ep, err := game.NewEpisode(cfg, rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, err
	}
	p.attach(ep)
	return ep, nil
}

func runPlay(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	mode := fs.String("mode", "human", "player: human|bot|genome")
	genomeID := fs.String("genome-id", "", "stored genome id for mode=genome (empty uses the best genome)")
	blueprint := fs.String("blueprint", "classic", "maze blueprint")
	difficulty := fs.String("difficulty", "medium", "ghost difficulty: easy|medium|hard")
	tickMS := fs.Int("tick-ms", 0, "milliseconds per tick (0 runs at 60 ticks per second)")
	seed := fs.Int64("seed", time.Now().UnixNano(), "episode rng seed")
	sf := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *tickMS < 0 {
		return errors.New("tick-ms must be >= 0")
	}

	p, err := newPlayer(ctx, *mode, *genomeID, sf)
	if err != nil {
		return err
	}
	ep, err := newEpisode(*blueprint, *difficulty, p, *seed)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	session, err := interactive.New(screen, ep, interactive.Config{
		TickInterval: time.Duration(*tickMS) * time.Millisecond,
		Human:        p.human,
	})
	if err != nil {
		screen.Fini()
		return err
	}
	res, runErr := session.Run(ctx)
	screen.Fini()
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	if err := p.err(); err != nil {
		return err
	}
	fmt.Printf("status=%s score=%s pellets=%d ticks=%s\n",
		res.Status,
		humanize.Comma(int64(res.Score)),
		res.PelletsEaten,
		humanize.Comma(int64(res.Ticks)),
	)
	return nil
}

func runSpectate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("spectate", flag.ContinueOnError)
	listen := fs.String("listen", ":8080", "websocket listen address")
	mode := fs.String("mode", "bot", "player: bot|genome")
	genomeID := fs.String("genome-id", "", "stored genome id for mode=genome (empty uses the best genome)")
	blueprint := fs.String("blueprint", "classic", "maze blueprint")
	difficulty := fs.String("difficulty", "medium", "ghost difficulty: easy|medium|hard")
	frameMS := fs.Int("frame-ms", 16, "milliseconds per broadcast frame")
	wait := fs.Bool("wait", true, "wait for the first spectator before starting")
	seed := fs.Int64("seed", time.Now().UnixNano(), "episode rng seed")
	sf := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *mode == "human" {
		return errors.New("spectate supports mode bot or genome")
	}
	if *frameMS <= 0 {
		return errors.New("frame-ms must be > 0")
	}

	p, err := newPlayer(ctx, *mode, *genomeID, sf)
	if err != nil {
		return err
	}
	ep, err := newEpisode(*blueprint, *difficulty, p, *seed)
	if err != nil {
		return err
	}
	logger, err := newLogger(os.Stderr, *sf.logLevel)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", *listen)
	if err != nil {
		return err
	}
	hub := spectate.NewHub(logger)
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("spectator server stopped", "error", err)
		}
	}()
	defer func() {
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	logger.Info("spectator stream listening", "addr", ln.Addr().String(), "path", "/ws")

	if *wait {
		if err := waitForClient(ctx, hub); err != nil {
			return err
		}
	}
	res, err := spectate.Run(ctx, hub, ep, time.Duration(*frameMS)*time.Millisecond)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if err := p.err(); err != nil {
		return err
	}
	fmt.Printf("status=%s score=%s pellets=%d ticks=%s\n",
		res.Status,
		humanize.Comma(int64(res.Score)),
		res.PelletsEaten,
		humanize.Comma(int64(res.Ticks)),
	)
	return nil
}

func waitForClient(ctx context.Context, hub *spectate.Hub) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for hub.Clients() == 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// createdLabel renders an index timestamp relative to now, or as stored
// when it does not parse.
func createdLabel(createdAtUTC string) string {
	at, err := time.Parse(time.RFC3339Nano, createdAtUTC)
	if err != nil {
		return createdAtUTC
	}
	return humanize.Time(at)
}
