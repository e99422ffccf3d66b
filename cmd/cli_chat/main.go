package main

import (
	"bufio"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"affinity-chat/internal/config"
	"affinity-chat/internal/db"
	"affinity-chat/internal/domain"
	"affinity-chat/internal/llm"
	"affinity-chat/internal/repository"
	"affinity-chat/internal/service"
)

const cliUserID = "cli_user"

//go:embed personas.yaml
var presetPersonasYAML []byte

func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	var (
		personasPath string
		personaIdx   int
		scene        string
		seed         int
	)
	flagSet := pflag.NewFlagSet("cli_chat", pflag.ContinueOnError)
	flagSet.StringVar(&personasPath, "personas", "", "archivo YAML con personajes (default: presets incluidos)")
	flagSet.IntVarP(&personaIdx, "persona", "p", 0, "indice del personaje, empieza en 1 (default: preguntar)")
	flagSet.StringVar(&scene, "scene", "", "escenario: online, offline_date o phone_call (default: preguntar)")
	flagSet.IntVar(&seed, "seed", -1, "afinidad inicial 0-100 (default: preguntar)")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatal(err)
	}

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	var (
		convRepo    repository.ConversationRepository = repository.NewInMemoryConversationRepository()
		messageRepo repository.MessageRepository      = repository.NewInMemoryMessageRepository()
		personaRepo repository.PersonaRepository      = repository.NewInMemoryPersonaRepository()
	)
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer pool.Close()
		if err := db.EnsureSchema(ctx, pool); err != nil {
			log.Fatal(err)
		}
		convRepo = repository.NewPgConversationRepository(pool)
		messageRepo = repository.NewPgMessageRepository(pool)
		personaRepo = repository.NewPgPersonaRepository(pool)
	}

	llmClient := llm.NewClient(cfg.LLMProvider, cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout(), logger)
	convSvc := service.NewConversationService(convRepo, messageRepo, personaRepo, llmClient, nil, cfg.EngineConfig(), logger)

	presets, err := loadPresets(personasPath)
	if err != nil {
		log.Fatal(err)
	}
	persona := choosePersona(reader, presets, personaIdx)
	if !flagSet.Changed("scene") {
		fmt.Print("Escenario [online/offline_date/phone_call] (default online): ")
		scene = readLine(reader)
	}
	if scene == "" {
		scene = domain.SceneOnline
	}
	if !flagSet.Changed("seed") {
		seed = readIntDefault(reader, "Afinidad inicial (0-100, default 30): ", 30)
	}

	conv, err := convSvc.Start(ctx, cliUserID, persona, scene, seed)
	if err != nil {
		log.Fatalf("iniciar conversacion: %v", err)
	}

	fmt.Printf("---- Chat con %s (escribe 'salir' para terminar) ----\n", persona.Name)
	if err := chatFlow(ctx, reader, convSvc, conv, persona); err != nil {
		log.Printf("error en chat: %v", err)
	}
}

func chatFlow(ctx context.Context, reader *bufio.Reader, convSvc *service.ConversationService, conv domain.Conversation, persona domain.Persona) error {
	var options []string
	for {
		fmt.Printf("[ronda %d | afinidad %d] Tu > ", conv.Round, conv.Affinity)
		text, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("leer input: %w", err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if strings.EqualFold(text, "salir") || strings.EqualFold(text, "exit") {
			if _, err := convSvc.End(ctx, conv.ID, domain.EndReasonUser); err != nil {
				return fmt.Errorf("terminar conversacion: %w", err)
			}
			fmt.Println("Saliendo del chat...")
			return nil
		}

		var opts service.TurnOptions
		// En modo practica se puede elegir una de las opciones sugeridas por numero.
		if idx, err := strconv.Atoi(text); err == nil && idx >= 1 && idx <= len(options) {
			sel := idx - 1
			opts.SelectedOption = &sel
			text = options[sel]
		}

		res, err := convSvc.Turn(ctx, conv.ID, text, opts)
		switch {
		case errors.Is(err, service.ErrRoundCeilingReached), errors.Is(err, service.ErrConversationEnded):
			fmt.Println("La conversacion termino.")
			return nil
		case err != nil:
			fmt.Printf("error generando respuesta: %v\n", err)
			continue
		}
		conv = res.Conversation

		if res.ReplyDelay > 0 {
			time.Sleep(res.ReplyDelay)
		}
		fmt.Printf("%s > %s\n", persona.Name, res.Reply)
		sign := ""
		if res.Point.Delta >= 0 {
			sign = "+"
		}
		fmt.Printf("   (afinidad %s%d -> %d", sign, res.Point.Delta, res.Point.Value)
		if res.Point.IsPeak && res.Point.Reason != "" {
			fmt.Printf(", %s", res.Point.Reason)
		}
		if res.Fallback {
			fmt.Print(", reglas")
		}
		fmt.Println(")")
		if res.Radar != nil {
			fmt.Printf("   [%s] %s -> %s\n", res.Radar.Type, res.Radar.Content, res.Radar.Suggestion)
		}
		options = res.Options
		for i, o := range options {
			fmt.Printf("   [%d] %s\n", i+1, o)
		}
		if !conv.IsActive() {
			fmt.Printf("La conversacion termino (%s).\n", conv.EndReason)
			return nil
		}
	}
}

func loadPresets(path string) ([]domain.Persona, error) {
	if path == "" {
		return config.ParsePersonas(presetPersonasYAML)
	}
	return config.LoadPersonasFile(path)
}

func choosePersona(reader *bufio.Reader, presets []domain.Persona, idx int) domain.Persona {
	if idx < 1 || idx > len(presets) {
		fmt.Println("Personajes disponibles:")
		for i, p := range presets {
			fmt.Printf("[%d] %s - %s\n", i+1, p.Name, p.Bio())
		}
		idx = readIntDefault(reader, "Selecciona un personaje (default 1): ", 1)
	}
	if idx < 1 || idx > len(presets) {
		idx = 1
	}
	return presets[idx-1]
}

func readLine(reader *bufio.Reader) string {
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func readIntDefault(reader *bufio.Reader, prompt string, def int) int {
	fmt.Print(prompt)
	s := readLine(reader)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
