package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type StatusResponse struct {
	Settings           GameSettingsDTO  `json:"settings"`
	Config             Config           `json:"config"`
	NextPlayer         int              `json:"next_player"`
	Winner             int              `json:"winner"`
	BoardSize          int              `json:"board_size"`
	Board              [][]int          `json:"board"`
	Status             string           `json:"status"`
	Ledger             []ledgerEntryDTO `json:"ledger"`
	Head               int              `json:"head"`
	WinReason          string           `json:"win_reason"`
	WinningLine        []Move           `json:"winning_line"`
	WinningCapturePair []Move           `json:"winning_capture_pair"`
	MustCapture        bool             `json:"must_capture"`
	ForcedCaptureMoves []Move           `json:"forced_capture_moves"`
	CapturedBlack      int              `json:"captured_black"`
	CapturedWhite      int              `json:"captured_white"`
	BlackClockMs       float64          `json:"black_clock_ms"`
	WhiteClockMs       float64          `json:"white_clock_ms"`
	TurnStartedAtMs    int64            `json:"turn_started_at_ms"`
	Session            string           `json:"session"`
}

type GameSettingsDTO struct {
	BoardSize        int    `json:"board_size"`
	WinLength        int    `json:"win_length"`
	CaptureWinStones int    `json:"capture_win_stones"`
	BlackSeat        string `json:"black_seat"`
	WhiteSeat        string `json:"white_seat"`
	BlackStarts      *bool  `json:"black_starts,omitempty"`
}

type apiMove struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type ledgerEntryDTO struct {
	X                 int          `json:"x"`
	Y                 int          `json:"y"`
	Player            int          `json:"player"`
	ElapsedMs         float64      `json:"elapsed_ms"`
	Forced            bool         `json:"forced"`
	CapturedCount     int          `json:"captured_count"`
	CapturedPositions []Move       `json:"captured_positions"`
	Changes           []cellChange `json:"changes"`
}

type cellChange struct {
	X     int `json:"x"`
	Y     int `json:"y"`
	Value int `json:"value"`
}

type ledgerPayload struct {
	Entries []ledgerEntryDTO `json:"entries"`
	Head    int              `json:"head"`
}

type resetPayload struct {
	Ledger           []ledgerEntryDTO `json:"ledger"`
	Head             int              `json:"head"`
	NextPlayer       int              `json:"next_player"`
	Winner           int              `json:"winner"`
	Status           string           `json:"status"`
	BoardSize        int              `json:"board_size"`
	CaptureWinStones int              `json:"capture_win_stones"`
	TurnStartedAtMs  int64            `json:"turn_started_at_ms"`
}

type settingsPayload struct {
	Settings GameSettingsDTO `json:"settings"`
	Config   Config          `json:"config"`
}

func main() {
	var configPath string
	var addr string

	rootCmd := &cobra.Command{
		Use:   "gomokud",
		Short: "Gomoku match server with capture rules and async seat engines",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket match server",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				config.Addr = addr
			}
			configStore.Update(config)
			setupLogging(config.LogLevel)
			return runServer(config)
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Errorf("command failed: %v", err)
		os.Exit(1)
	}
}

func runServer(config Config) error {
	settings := config.GameSettings()
	controller := NewGameController(settings)
	hub := NewHub()
	leaderboard := NewLeaderboard(NewFileRecordStore(config.LeaderboardPath))

	var engineMu sync.Mutex
	var activeEngine *EngineChannel
	attachEngine := func(settings GameSettings) {
		engineMu.Lock()
		defer engineMu.Unlock()
		if activeEngine != nil {
			activeEngine.Shutdown()
			activeEngine = nil
		}
		engine, err := NewEngineChannel(settings, GetConfig().Engine)
		if err != nil {
			log.Warnf("engine channel unavailable: %v", err)
			controller.SetEngineChannel(nil)
			return
		}
		activeEngine = engine
		controller.SetEngineChannel(engine)
	}
	attachEngine(settings)

	if apiKey := os.Getenv(config.AdvisorKeyEnv); apiKey != "" {
		model, err := newGenaiAdvisorModel(context.Background(), apiKey, config.AdvisorModel)
		if err != nil {
			log.Warnf("advisor unavailable: %v", err)
		} else {
			controller.SetAdvisor(NewAdvisor(model))
		}
	} else {
		log.Infof("advisor disabled: %s not set", config.AdvisorKeyEnv)
	}

	controller.AddListener(MatchListenerFuncs{
		OnGameWon: func(winner PlayerColor, reason string, state GameState) {
			// The snapshot already carries the final totals; only the
			// file write happens off the notification path.
			go leaderboard.RecordFinishedMatch(winner, reason, state,
				state.Settings, state.MoveCount, state.BlackClockMs, state.WhiteClockMs)
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx.Done())

	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if controller.Tick(ctx) && hub.HasClients() {
					if entry, ok := controller.LatestLedgerEntry(); ok {
						hub.broadcastLedger <- ledgerPayload{
							Entries: []ledgerEntryDTO{ledgerEntryToDTO(entry)},
							Head:    controller.Ledger().Head(),
						}
					}
					hub.broadcastStatus <- controllerStatus(controller)
				}
			}
		}
	}()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, controllerStatus(controller))
	})

	r.Post("/api/start", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Settings *GameSettingsDTO `json:"settings"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		settings := controller.Settings()
		if payload.Settings != nil {
			settings = settingsFromDTO(*payload.Settings, settings)
		}
		attachEngine(settings)
		controller.StartGame(settings)
		writeJSON(w, http.StatusOK, controllerStatus(controller))
		hub.broadcastReset <- resetFromController(controller)
	})

	r.Post("/api/stop", func(w http.ResponseWriter, r *http.Request) {
		controller.Reset(controller.Settings())
		writeJSON(w, http.StatusOK, controllerStatus(controller))
		hub.broadcastReset <- resetFromController(controller)
	})

	r.Post("/api/move", func(w http.ResponseWriter, r *http.Request) {
		var payload apiMove
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		applied, errMsg := controller.ApplyHumanMove(Move{X: payload.X, Y: payload.Y})
		if !applied {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": errMsg})
			return
		}
		if entry, ok := controller.LatestLedgerEntry(); ok {
			hub.broadcastLedger <- ledgerPayload{
				Entries: []ledgerEntryDTO{ledgerEntryToDTO(entry)},
				Head:    controller.Ledger().Head(),
			}
		}
		hub.broadcastStatus <- controllerStatus(controller)
		writeJSON(w, http.StatusOK, controllerStatus(controller))
	})

	r.Post("/api/jump", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Index int `json:"index"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		head := controller.JumpTo(payload.Index)
		status := controllerStatus(controller)
		writeJSON(w, http.StatusOK, map[string]any{"head": head, "status": status})
		hub.broadcastStatus <- status
	})

	r.Post("/api/settings", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Settings *GameSettingsDTO `json:"settings"`
			Config   *Config          `json:"config"`
			Reset    bool             `json:"reset"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		if payload.Config != nil {
			configStore.Update(*payload.Config)
		}
		if payload.Settings != nil {
			settings := settingsFromDTO(*payload.Settings, controller.Settings())
			if payload.Reset || settings.BoardSize != controller.Settings().BoardSize {
				attachEngine(settings)
				controller.UpdateSettings(settings, true)
			} else {
				controller.UpdateSettings(settings, false)
			}
		}
		hub.broadcastSettings <- settingsPayload{
			Settings: settingsToDTO(controller.Settings()),
			Config:   GetConfig(),
		}
		writeJSON(w, http.StatusOK, controllerStatus(controller))
	})

	r.Get("/api/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit <= 0 {
			limit = 20
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"records": leaderboard.Top(limit),
			"total":   len(leaderboard.All()),
		})
	})

	r.Get("/ws/", func(w http.ResponseWriter, r *http.Request) {
		serveWS(hub, controller, w, r)
	})

	server := &http.Server{
		Addr:    config.Addr,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	log.Infof("listening on %s", config.Addr)
	var runErr error
	select {
	case <-sigCtx.Done():
		log.Info("shutdown signal received")
	case err, ok := <-serverErrCh:
		if ok {
			runErr = err
			log.Errorf("server error: %v", err)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Warnf("graceful shutdown failed: %v", err)
		if closeErr := server.Close(); closeErr != nil && !errors.Is(closeErr, http.ErrServerClosed) {
			log.Warnf("forced close failed: %v", closeErr)
		}
	}
	cancel()
	return runErr
}

func serveWS(hub *Hub, controller *GameController, w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{hub: hub, send: make(chan []byte, 16)}
	hub.Register(client)
	configureWSRead(conn)

	client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(controllerStatus(controller))})

	go func() {
		defer conn.Close()
		if err := writeWSWithHeartbeat(conn, client.send); err != nil {
			return
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			hub.Unregister(client)
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "request_status":
			client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(controllerStatus(controller))})
		}
	}
}

func controllerStatus(controller *GameController) StatusResponse {
	state := controller.State()
	settings := controller.Settings()
	ledger := controller.Ledger()
	blackMs, whiteMs := controller.Clocks()
	return StatusResponse{
		Settings:           settingsToDTO(settings),
		Config:             GetConfig(),
		NextPlayer:         playerToInt(state.ToMove),
		Winner:             winnerFromStatus(state.Status),
		BoardSize:          state.Board.Size(),
		Board:              boardToSlice(state.Board),
		Status:             statusToString(state.Status),
		Ledger:             ledgerToDTO(ledger),
		Head:               ledger.Head(),
		WinReason:          winReasonFromState(state),
		WinningLine:        append([]Move(nil), state.WinningLine...),
		WinningCapturePair: append([]Move(nil), state.WinningCapturePair...),
		MustCapture:        state.MustCapture,
		ForcedCaptureMoves: append([]Move(nil), state.ForcedCaptureMoves...),
		CapturedBlack:      state.CapturedBlack,
		CapturedWhite:      state.CapturedWhite,
		BlackClockMs:       blackMs,
		WhiteClockMs:       whiteMs,
		TurnStartedAtMs:    controller.CurrentTurnStartedAtMs(),
		Session:            controller.Session().String(),
	}
}

func winReasonFromState(state GameState) string {
	if winnerFromStatus(state.Status) == 0 {
		return ""
	}
	if len(state.WinningLine) > 0 {
		return winReasonAlignment
	}
	if len(state.WinningCapturePair) > 0 {
		return winReasonCaptureThreat
	}
	return winReasonCapture
}

func settingsFromDTO(dto GameSettingsDTO, base GameSettings) GameSettings {
	settings := base
	if dto.BoardSize > 0 {
		settings.BoardSize = dto.BoardSize
	}
	if dto.WinLength > 0 {
		settings.WinLength = dto.WinLength
	}
	if dto.CaptureWinStones > 0 {
		settings.CaptureWinStones = dto.CaptureWinStones
	}
	if dto.BlackSeat != "" {
		settings.BlackSeat = seatFromString(dto.BlackSeat)
	}
	if dto.WhiteSeat != "" {
		settings.WhiteSeat = seatFromString(dto.WhiteSeat)
	}
	if dto.BlackStarts != nil {
		settings.BlackStarts = *dto.BlackStarts
	}
	return settings
}

func settingsToDTO(settings GameSettings) GameSettingsDTO {
	blackStarts := settings.BlackStarts
	return GameSettingsDTO{
		BoardSize:        settings.BoardSize,
		WinLength:        settings.WinLength,
		CaptureWinStones: settings.CaptureWinStones,
		BlackSeat:        settings.BlackSeat.String(),
		WhiteSeat:        settings.WhiteSeat.String(),
		BlackStarts:      &blackStarts,
	}
}

func seatFromString(value string) SeatController {
	switch value {
	case "engine":
		return SeatEngine
	case "agent":
		return SeatAgent
	default:
		return SeatHuman
	}
}

func boardToSlice(board Board) [][]int {
	size := board.Size()
	rows := make([][]int, size)
	for y := 0; y < size; y++ {
		rows[y] = make([]int, size)
		for x := 0; x < size; x++ {
			rows[y][x] = cellToInt(board.At(x, y))
		}
	}
	return rows
}

func cellToInt(cell Cell) int {
	switch cell {
	case CellBlack:
		return 1
	case CellWhite:
		return 2
	default:
		return 0
	}
}

func playerToInt(player PlayerColor) int {
	if player == PlayerBlack {
		return 1
	}
	return 2
}

func winnerFromStatus(status GameStatus) int {
	switch status {
	case StatusBlackWon:
		return 1
	case StatusWhiteWon:
		return 2
	default:
		return 0
	}
}

func statusToString(status GameStatus) string {
	switch status {
	case StatusNotStarted:
		return "not_started"
	case StatusBlackWon:
		return "black_won"
	case StatusWhiteWon:
		return "white_won"
	case StatusDraw:
		return "draw"
	default:
		return "running"
	}
}

func ledgerToDTO(ledger Ledger) []ledgerEntryDTO {
	entries := ledger.All()
	result := make([]ledgerEntryDTO, 0, len(entries))
	for _, entry := range entries {
		result = append(result, ledgerEntryToDTO(entry))
	}
	return result
}

func ledgerEntryToDTO(entry LedgerEntry) ledgerEntryDTO {
	return ledgerEntryDTO{
		X:                 entry.Move.X,
		Y:                 entry.Move.Y,
		Player:            playerToInt(entry.Player),
		ElapsedMs:         entry.ElapsedMs,
		Forced:            entry.Forced,
		CapturedCount:     entry.CapturedCount,
		CapturedPositions: append([]Move(nil), entry.CapturedPositions...),
		Changes:           changesFromEntry(entry),
	}
}

func changesFromEntry(entry LedgerEntry) []cellChange {
	changes := []cellChange{{
		X:     entry.Move.X,
		Y:     entry.Move.Y,
		Value: playerToInt(entry.Player),
	}}
	for _, captured := range entry.CapturedPositions {
		changes = append(changes, cellChange{X: captured.X, Y: captured.Y, Value: 0})
	}
	return changes
}

func resetFromController(controller *GameController) resetPayload {
	state := controller.State()
	settings := controller.Settings()
	ledger := controller.Ledger()
	return resetPayload{
		Ledger:           ledgerToDTO(ledger),
		Head:             ledger.Head(),
		NextPlayer:       playerToInt(state.ToMove),
		Winner:           winnerFromStatus(state.Status),
		Status:           statusToString(state.Status),
		BoardSize:        state.Board.Size(),
		CaptureWinStones: settings.CaptureWinStones,
		TurnStartedAtMs:  controller.CurrentTurnStartedAtMs(),
	}
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
