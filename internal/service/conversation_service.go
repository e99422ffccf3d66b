package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"affinity-chat/internal/domain"
	"affinity-chat/internal/llm"
	"affinity-chat/internal/repository"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrConversationEnded    = errors.New("conversation ended")
	ErrRoundCeilingReached  = errors.New("round ceiling reached")
	// ErrTokenBudgetExceeded solo dispara la compresion; nunca llega al caller.
	ErrTokenBudgetExceeded = errors.New("token budget exceeded")
	ErrEmptyInput          = errors.New("empty input")
)

// TurnOptions son los datos opcionales del mensaje del usuario.
type TurnOptions struct {
	QuotedContent  *string
	SelectedOption *int
}

// TurnResult es la foto completa de una ronda ya aplicada.
type TurnResult struct {
	Conversation   domain.Conversation
	UserMessage    domain.Message
	PersonaMessage domain.Message
	Point          domain.AffinityPoint
	Reply          string
	Options        []string
	Radar          *RadarTag
	Fallback       bool
	Event          *SpecialEvent
	Compressed     bool
	ReplyDelay     time.Duration
	Cost           float64
}

// session es la ultima foto conocida en este proceso; sobrevive a fallas de escritura.
type session struct {
	conv         domain.Conversation
	persona      domain.Persona
	history      []domain.Message
	fallbackOnly bool
}

// ConversationService orquesta cada ronda: prompt, backend o reglas, linea de afinidad, memoria y persistencia.
type ConversationService struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	personas      repository.PersonaRepository
	llmClient     llm.LLMClient
	lock          TurnLock
	cfg           EngineConfig
	logger        *zap.Logger

	rules      *TraitRuleEngine
	composer   PromptComposer
	parser     ReplyParser
	compressor MemoryCompressor
	estimator  TokenEstimator

	mu       sync.Mutex
	sessions map[string]*session
}

// NewConversationService: llmClient puede ser nil, en ese caso todas las rondas usan el motor de reglas.
func NewConversationService(
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	personas repository.PersonaRepository,
	llmClient llm.LLMClient,
	lock TurnLock,
	cfg EngineConfig,
	logger *zap.Logger,
) *ConversationService {
	cfg = cfg.withDefaults()
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	if lock == nil {
		lock = NewLocalTurnLock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConversationService{
		conversations: conversations,
		messages:      messages,
		personas:      personas,
		llmClient:     llmClient,
		lock:          lock,
		cfg:           cfg,
		logger:        logger,
		rules:         NewTraitRuleEngine(NewKeywordClassifier(), cfg.Rand),
		composer:      DefaultPromptComposer,
		parser:        DefaultReplyParser,
		compressor:    DefaultMemoryCompressor,
		estimator:     DefaultTokenEstimator,
		sessions:      make(map[string]*session),
	}
}

// Start crea la conversacion con el punto semilla de ronda 0.
func (s *ConversationService) Start(ctx context.Context, userID string, persona domain.Persona, sceneID string, seedAffinity int) (domain.Conversation, error) {
	if err := persona.Traits.Validate(); err != nil {
		return domain.Conversation{}, fmt.Errorf("start conversation: %w", err)
	}
	if persona.ID == "" {
		persona.ID = s.cfg.NewID()
	}
	now := s.cfg.Now()
	conv := domain.NewConversation(s.cfg.NewID(), userID, persona.ID, sceneID, seedAffinity, now)

	if err := s.personas.Upsert(ctx, persona); err != nil {
		s.logger.Warn("persist persona failed", zap.String("persona_id", persona.ID), zap.Error(err))
	}
	if err := s.conversations.Create(ctx, conv); err != nil {
		s.logger.Warn("persist conversation failed", zap.String("conversation_id", conv.ID), zap.Error(err))
	}

	s.mu.Lock()
	s.sessions[conv.ID] = &session{conv: conv, persona: persona}
	s.mu.Unlock()

	s.logger.Info("conversation started",
		zap.String("conversation_id", conv.ID),
		zap.String("persona_id", persona.ID),
		zap.Int("affinity", conv.Affinity),
	)
	return conv, nil
}

// Get devuelve la foto mas reciente de la conversacion.
func (s *ConversationService) Get(ctx context.Context, conversationID string) (domain.Conversation, error) {
	sess, err := s.load(ctx, conversationID)
	if err != nil {
		return domain.Conversation{}, err
	}
	return sess.conv, nil
}

// History devuelve los mensajes conocidos de la conversacion sin etiquetas.
func (s *ConversationService) History(ctx context.Context, conversationID string) ([]domain.Message, error) {
	sess, err := s.load(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return append([]domain.Message(nil), sess.history...), nil
}

// Turn ejecuta una ronda completa. Las rondas de una misma conversacion se serializan.
func (s *ConversationService) Turn(ctx context.Context, conversationID, input string, opts TurnOptions) (TurnResult, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return TurnResult{}, ErrEmptyInput
	}
	if err := ctx.Err(); err != nil {
		return TurnResult{}, err
	}

	release, err := s.lock.Acquire(ctx, conversationID)
	if err != nil {
		return TurnResult{}, fmt.Errorf("acquire turn lock: %w", err)
	}
	defer release()

	sess, err := s.load(ctx, conversationID)
	if err != nil {
		return TurnResult{}, err
	}
	conv := sess.conv
	if conv.Round >= domain.RoundCeiling {
		return TurnResult{}, ErrRoundCeilingReached
	}
	if !conv.IsActive() {
		return TurnResult{}, ErrConversationEnded
	}

	userMsg := domain.Message{
		ID:             s.cfg.NewID(),
		ConversationID: conv.ID,
		Content:        input,
		Sender:         domain.SenderUser,
		CreatedAt:      s.cfg.Now(),
		QuotedContent:  opts.QuotedContent,
		SelectedOption: opts.SelectedOption,
	}

	result := TurnResult{UserMessage: userMsg}
	var reply generatedReply
	if !sess.fallbackOnly && s.llmClient != nil {
		reply, err = s.remoteReply(ctx, sess, input)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return TurnResult{}, ctxErr
			}
			s.logger.Warn("llm backend failed, switching to rule engine",
				zap.String("conversation_id", conv.ID),
				zap.Error(err),
			)
			s.markFallback(conv.ID)
			reply = s.fallbackReply(sess, input)
		}
	} else {
		reply = s.fallbackReply(sess, input)
	}

	// Cancelado antes de tocar la linea de afinidad: no se aplica nada.
	if err := ctx.Err(); err != nil {
		return TurnResult{}, err
	}

	now := s.cfg.Now()
	personaMsgID := s.cfg.NewID()
	delta := reply.delta
	next, point := conv.ApplyTurn(domain.TurnUpdate{
		Delta:       delta,
		Reason:      reply.reason,
		MessageID:   personaMsgID,
		IsPeak:      reply.isPeak,
		TokensAdded: s.estimator.Estimate(input) + s.estimator.Estimate(reply.text),
		At:          now,
	})
	personaMsg := domain.Message{
		ID:             personaMsgID,
		ConversationID: conv.ID,
		Content:        reply.text,
		Sender:         domain.SenderPersona,
		CreatedAt:      now,
		AffinityDelta:  &delta,
	}
	if reply.event != nil && *reply.event == EventBreakup && next.IsActive() {
		next = next.End(domain.EndReasonBreakup, now)
	}

	history := append(append([]domain.Message(nil), sess.history...), userMsg, personaMsg)
	next, compressed := s.maybeCompress(next, sess.persona, history)

	persisted := s.persistTurn(ctx, next, userMsg, personaMsg)
	s.settle(conv.ID, next, history, persisted)

	result.Conversation = next
	result.PersonaMessage = personaMsg
	result.Point = point
	result.Reply = reply.text
	result.Options = reply.options
	result.Radar = reply.radar
	result.Fallback = reply.fallback
	result.Event = reply.event
	result.Compressed = compressed
	result.ReplyDelay = s.replyDelay(sess.persona.Traits.ChatDelay)
	result.Cost = reply.cost

	s.logger.Info("turn applied",
		zap.String("conversation_id", conv.ID),
		zap.Int("round", next.Round),
		zap.Int("affinity", next.Affinity),
		zap.Int("delta", point.Delta),
		zap.Bool("fallback", reply.fallback),
		zap.Bool("peak", point.IsPeak),
	)
	return result, nil
}

// End cierra la conversacion; cerrar una ya cerrada no falla.
func (s *ConversationService) End(ctx context.Context, conversationID, reason string) (domain.Conversation, error) {
	release, err := s.lock.Acquire(ctx, conversationID)
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("acquire turn lock: %w", err)
	}
	defer release()

	sess, err := s.load(ctx, conversationID)
	if err != nil {
		return domain.Conversation{}, err
	}
	if !sess.conv.IsActive() {
		return sess.conv, nil
	}
	if reason == "" {
		reason = domain.EndReasonUser
	}
	next := sess.conv.End(reason, s.cfg.Now())
	persisted := true
	if err := s.conversations.Update(ctx, next); err != nil {
		s.logger.Warn("persist conversation end failed", zap.String("conversation_id", next.ID), zap.Error(err))
		persisted = false
	}
	s.settle(next.ID, next, sess.history, persisted)
	return next, nil
}

type generatedReply struct {
	text     string
	delta    int
	reason   string
	isPeak   bool
	options  []string
	radar    *RadarTag
	fallback bool
	event    *SpecialEvent
	cost     float64
}

// remoteReply arma el prompt, llama al backend con reintentos y parsea la salida.
func (s *ConversationService) remoteReply(ctx context.Context, sess session, input string) (generatedReply, error) {
	conv := sess.conv
	persona := sess.persona

	system := s.composer.Compose(persona, conv.Round, conv.Affinity, conv.SceneID)
	if mem := s.composer.ComposeMemory(conv.Memory); mem != "" {
		system += "\n\n" + mem
	}
	msgs := []llm.ChatMessage{{Role: llm.RoleSystem, Content: system}}
	msgs = append(msgs, s.composer.ComposeHistory(persona, uncoveredMessages(sess.history, conv.Memory), conv.Round, conv.Affinity, s.cfg.MaxHistory)...)
	msgs = append(msgs, llm.ChatMessage{Role: llm.RoleUser, Content: input})

	resp, err := s.chatWithRetry(ctx, llm.ChatRequest{
		Messages:    msgs,
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	})
	if err != nil {
		return generatedReply{}, err
	}

	parsed := s.parser.Parse(resp.Content)
	if parsed.Text == "" {
		return generatedReply{}, llm.ErrBackendEmpty
	}
	if !parsed.Tagged {
		s.logger.Debug("reply without affinity tag", zap.String("conversation_id", conv.ID), zap.Error(ErrTagParseFailure))
	}
	delta := clampDelta(parsed.Delta())
	isPeak := parsed.Tag.IsPeak
	if !isPeak {
		newValue := domain.ClampAffinity(conv.Affinity + delta)
		isPeak = domain.PeakDetector{Rand: s.cfg.Rand}.IsPeak(conv.Affinity, newValue, delta)
	}
	return generatedReply{
		text:    parsed.Text,
		delta:   delta,
		reason:  parsed.Tag.Reason,
		isPeak:  isPeak,
		options: parsed.Options,
		radar:   parsed.Radar,
		cost:    s.cfg.CostRates.Estimate(resp.Usage),
	}, nil
}

// chatWithRetry reintenta solo errores de la taxonomia, con espera base*2^(n-1).
func (s *ConversationService) chatWithRetry(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		resp, err := s.llmClient.Chat(ctx, req)
		if err == nil {
			if strings.TrimSpace(resp.Content) == "" {
				return llm.ChatResponse{}, llm.ErrBackendEmpty
			}
			return resp, nil
		}
		lastErr = err
		if !llm.IsRetryable(err) || attempt == s.cfg.MaxAttempts {
			break
		}
		delay := s.cfg.backoff(attempt)
		s.logger.Debug("llm call failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)
		if err := s.cfg.Sleep(ctx, delay); err != nil {
			return llm.ChatResponse{}, err
		}
	}
	return llm.ChatResponse{}, fmt.Errorf("llm chat: %w", lastErr)
}

// fallbackReply usa el motor de reglas; los eventos especiales tienen prioridad y no mueven la afinidad.
func (s *ConversationService) fallbackReply(sess session, input string) generatedReply {
	traits := sess.persona.Traits
	if ev := s.rules.CheckSpecialEvent(traits, sess.conv.Affinity, sess.history); ev != nil {
		if text := s.rules.SpecialEventReply(*ev, traits); text != "" {
			return generatedReply{text: text, fallback: true, event: ev, isPeak: *ev == EventBreakup}
		}
	}
	fb := s.rules.Generate(input, sess.persona, sess.conv.Round, sess.conv.Affinity, sess.history)
	return generatedReply{
		text:     s.parser.Parse(fb.Text).Text,
		delta:    fb.Delta,
		reason:   fb.Reason,
		isPeak:   fb.IsPeak,
		fallback: true,
	}
}

// maybeCompress resume el historial cada MemoryInterval rondas o al pasar el presupuesto de tokens.
// Una misma ronda no se comprime dos veces.
func (s *ConversationService) maybeCompress(conv domain.Conversation, persona domain.Persona, history []domain.Message) (domain.Conversation, bool) {
	if conv.Memory != nil && conv.Memory.Round == conv.Round {
		return conv, false
	}
	trigger := s.compressor.ShouldCompress(conv.Round, s.cfg.MemoryInterval)
	if err := s.checkBudget(conv); errors.Is(err, ErrTokenBudgetExceeded) {
		trigger = true
	}
	if !trigger {
		return conv, false
	}
	if len(uncoveredMessages(history, conv.Memory)) == 0 {
		return conv, false
	}
	// El resumen nuevo cubre todo el historial, asi los temas anteriores no se pierden.
	summary := s.compressor.Compress(history, conv.Affinity, persona.Name)
	summary.Round = conv.Round
	next := conv.WithMemory(summary, s.estimator.Estimate(summary.Narrative))

	s.logger.Info("memory compressed",
		zap.String("conversation_id", conv.ID),
		zap.Int("round", conv.Round),
		zap.Strings("topics", summary.Topics),
	)
	return next, true
}

func (s *ConversationService) checkBudget(conv domain.Conversation) error {
	if s.estimator.ShouldCompress(conv.TokenEstimate, s.cfg.MaxContextTokens) {
		return ErrTokenBudgetExceeded
	}
	return nil
}

// persistTurn devuelve false si alguna escritura fallo.
func (s *ConversationService) persistTurn(ctx context.Context, conv domain.Conversation, userMsg, personaMsg domain.Message) bool {
	// Las escrituras no deben cortarse si el caller se va despues de aplicar la ronda.
	pctx := context.WithoutCancel(ctx)
	ok := true
	for _, m := range []domain.Message{userMsg, personaMsg} {
		if err := s.messages.Create(pctx, m); err != nil {
			ok = false
			s.logger.Warn("persist message failed",
				zap.String("conversation_id", conv.ID),
				zap.String("message_id", m.ID),
				zap.Error(err),
			)
		}
	}
	if err := s.conversations.Update(pctx, conv); err != nil {
		s.logger.Warn("persist conversation failed", zap.String("conversation_id", conv.ID), zap.Error(err))
		ok = false
	}
	return ok
}

// load prefiere la foto local si esta mas avanzada que la persistida.
func (s *ConversationService) load(ctx context.Context, conversationID string) (session, error) {
	s.mu.Lock()
	cached, ok := s.sessions[conversationID]
	var local session
	if ok {
		local = *cached
	}
	s.mu.Unlock()

	stored, err := s.conversations.GetByID(ctx, conversationID)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		if !ok {
			return session{}, ErrConversationNotFound
		}
	default:
		if !ok {
			return session{}, fmt.Errorf("get conversation: %w", err)
		}
		s.logger.Warn("load conversation failed, using local snapshot", zap.String("conversation_id", conversationID), zap.Error(err))
	}

	if ok && (err != nil || !newerThan(stored, local.conv)) {
		return local, nil
	}

	persona := local.persona
	if !ok || persona.ID != stored.PersonaID {
		persona, err = s.personas.GetByID(ctx, stored.PersonaID)
		if err != nil {
			return session{}, fmt.Errorf("get persona: %w", err)
		}
	}
	history, err := s.messages.ListByConversationID(ctx, conversationID)
	if err != nil {
		s.logger.Warn("load history failed", zap.String("conversation_id", conversationID), zap.Error(err))
		history = local.history
	}

	sess := session{conv: stored, persona: persona, history: history, fallbackOnly: local.fallbackOnly}
	s.mu.Lock()
	if stored.IsActive() {
		s.sessions[conversationID] = &sess
	} else {
		delete(s.sessions, conversationID)
	}
	s.mu.Unlock()
	return sess, nil
}

func newerThan(stored, local domain.Conversation) bool {
	if stored.Round != local.Round {
		return stored.Round > local.Round
	}
	return stored.UpdatedAt.After(local.UpdatedAt)
}

func (s *ConversationService) store(id string, conv domain.Conversation, history []domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{}
		s.sessions[id] = sess
	}
	sess.conv = conv
	sess.history = history
}

// settle suelta la foto local de una conversacion cerrada que ya quedo persistida;
// si la escritura fallo, la foto local sigue siendo la unica copia y se conserva.
func (s *ConversationService) settle(id string, conv domain.Conversation, history []domain.Message, persisted bool) {
	if conv.IsActive() || !persisted {
		s.store(id, conv, history)
		return
	}
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *ConversationService) markFallback(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.fallbackOnly = true
	}
}

// replyDelay muestrea la banda de habitos de chat del personaje.
func (s *ConversationService) replyDelay(band domain.ChatDelay) time.Duration {
	if band.MaxMS <= 0 {
		return 0
	}
	ms := band.MinMS
	if span := band.MaxMS - band.MinMS; span > 0 {
		ms += s.cfg.Rand.Intn(span + 1)
	}
	return time.Duration(ms) * time.Millisecond
}

// uncoveredMessages descarta lo que ya quedo dentro del resumen de memoria.
func uncoveredMessages(history []domain.Message, memory *domain.MemorySummary) []domain.Message {
	if memory == nil || memory.CoveredUntil.IsZero() {
		return history
	}
	out := make([]domain.Message, 0, len(history))
	for _, m := range history {
		if m.CreatedAt.After(memory.CoveredUntil) {
			out = append(out, m)
		}
	}
	return out
}
