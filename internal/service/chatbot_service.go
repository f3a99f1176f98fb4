package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clinical-docs-be/internal/dto"
	"clinical-docs-be/internal/entity"
	"clinical-docs-be/internal/pkg/logger"
	"clinical-docs-be/internal/repository/specification"
	"clinical-docs-be/internal/repository/unitofwork"
	"clinical-docs-be/pkg/embedding"
	"clinical-docs-be/pkg/llm"

	"github.com/google/uuid"
)

var ErrChatSessionNotFound = errors.New("chat session not found")

const (
	retrievalLimit     = 8
	retrievalThreshold = 0.45
	historyWindow      = 10
	defaultChatTitle   = "New conversation"
)

const systemPrompt = `You are a clinical documentation assistant. Answer the
clinician's question using ONLY the SOAP note excerpts provided as context.
Cite which patient and visit an answer comes from. If the context does not
contain the answer, say so plainly instead of guessing. Never invent clinical
facts.`

type IChatbotService interface {
	CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateChatSessionResponse, error)
	GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.ChatSessionResponse, error)
	GetChatHistory(ctx context.Context, userId, chatSessionId uuid.UUID) ([]*dto.ChatHistoryResponse, error)
	SendChat(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
	DeleteSession(ctx context.Context, userId uuid.UUID, req *dto.DeleteChatSessionRequest) error
}

type chatbotService struct {
	uowFactory        unitofwork.RepositoryFactory
	llmProvider       llm.LLMProvider
	embeddingProvider embedding.EmbeddingProvider
	log               logger.ILogger
}

func NewChatbotService(
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.LLMProvider,
	embeddingProvider embedding.EmbeddingProvider,
	log logger.ILogger,
) IChatbotService {
	return &chatbotService{
		uowFactory:        uowFactory,
		llmProvider:       llmProvider,
		embeddingProvider: embeddingProvider,
		log:               log,
	}
}

func (s *chatbotService) CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateChatSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session := entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     defaultChatTitle,
		CreatedAt: time.Now(),
	}
	if err := uow.ChatSessionRepository().Create(ctx, &session); err != nil {
		return nil, err
	}
	return &dto.CreateChatSessionResponse{Id: session.Id}, nil
}

func (s *chatbotService) GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.ChatSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.ByUserId{UserId: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}
	resp := make([]*dto.ChatSessionResponse, 0, len(sessions))
	for _, session := range sessions {
		resp = append(resp, &dto.ChatSessionResponse{
			Id:        session.Id,
			Title:     session.Title,
			CreatedAt: session.CreatedAt,
			UpdatedAt: session.UpdatedAt,
		})
	}
	return resp, nil
}

func (s *chatbotService) GetChatHistory(ctx context.Context, userId, chatSessionId uuid.UUID) ([]*dto.ChatHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.ownedSession(ctx, uow, userId, chatSessionId); err != nil {
		return nil, err
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionId{ChatSessionId: chatSessionId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	resp := make([]*dto.ChatHistoryResponse, 0, len(messages))
	for _, message := range messages {
		resp = append(resp, &dto.ChatHistoryResponse{
			Id:        message.Id,
			Role:      message.Role,
			Chat:      message.Content,
			CreatedAt: message.CreatedAt,
			Citations: s.citationsFor(ctx, uow, message.CitedNoteIds),
		})
	}
	return resp, nil
}

// SendChat answers a clinician question grounded on embedded SOAP notes:
// the question is embedded, similar chunks retrieved, and the model asked to
// answer strictly from that context.
func (s *chatbotService) SendChat(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	chatSession, err := s.ownedSession(ctx, uow, userId, req.ChatSessionId)
	if err != nil {
		return nil, err
	}

	userMessage := entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: chatSession.Id,
		Role:          entity.ChatRoleUser,
		Content:       req.Chat,
		CreatedAt:     time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, &userMessage); err != nil {
		return nil, err
	}

	contextBlock, citedNoteIds := s.retrieve(ctx, uow, req.Chat)
	history, err := s.loadHistory(ctx, uow, chatSession.Id)
	if err != nil {
		return nil, err
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: systemPrompt + "\n\nContext:\n" + contextBlock})
	messages = append(messages, history...)

	answer, err := s.llmProvider.Chat(ctx, messages, llm.WithTemperature(0.2))
	if err != nil {
		s.log.Error("chatbot", "model call failed", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("assistant unavailable: %w", err)
	}

	assistantMessage := entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: chatSession.Id,
		Role:          entity.ChatRoleAssistant,
		Content:       answer,
		CitedNoteIds:  citedNoteIds,
		CreatedAt:     time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, &assistantMessage); err != nil {
		return nil, err
	}

	if chatSession.Title == defaultChatTitle {
		chatSession.Title = titleFromQuestion(req.Chat)
		if err := uow.ChatSessionRepository().Update(ctx, chatSession); err != nil {
			s.log.Warn("chatbot", "failed to retitle session", map[string]interface{}{"error": err.Error()})
		}
	}

	return &dto.SendChatResponse{
		ChatSessionId:    chatSession.Id,
		ChatSessionTitle: chatSession.Title,
		Sent: &dto.SendChatResponseChat{
			Id:        userMessage.Id,
			Chat:      userMessage.Content,
			Role:      userMessage.Role,
			CreatedAt: userMessage.CreatedAt,
		},
		Reply: &dto.SendChatResponseChat{
			Id:        assistantMessage.Id,
			Chat:      assistantMessage.Content,
			Role:      assistantMessage.Role,
			CreatedAt: assistantMessage.CreatedAt,
			Citations: s.citationsFor(ctx, uow, citedNoteIds),
		},
	}, nil
}

func (s *chatbotService) DeleteSession(ctx context.Context, userId uuid.UUID, req *dto.DeleteChatSessionRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.ownedSession(ctx, uow, userId, req.ChatSessionId); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, req.ChatSessionId); err != nil {
		return err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, req.ChatSessionId); err != nil {
		return err
	}
	return uow.Commit()
}

// retrieve embeds the question and collects the most similar note chunks.
// Retrieval failures degrade to an empty context instead of failing the chat.
func (s *chatbotService) retrieve(ctx context.Context, uow unitofwork.UnitOfWork, question string) (string, []uuid.UUID) {
	queryEmbedding, err := s.embeddingProvider.Generate(question, "RETRIEVAL_QUERY")
	if err != nil {
		s.log.Warn("chatbot", "query embedding failed", map[string]interface{}{"error": err.Error()})
		return "(no notes retrieved)", nil
	}

	scored, err := uow.NoteEmbeddingRepository().SearchSimilarWithScore(
		ctx, queryEmbedding.Embedding.Values, retrievalLimit, retrievalThreshold,
	)
	if err != nil {
		s.log.Warn("chatbot", "similarity search failed", map[string]interface{}{"error": err.Error()})
		return "(no notes retrieved)", nil
	}
	if len(scored) == 0 {
		return "(no notes retrieved)", nil
	}

	var sb strings.Builder
	seen := map[uuid.UUID]bool{}
	var citedNoteIds []uuid.UUID
	for i, hit := range scored {
		fmt.Fprintf(&sb, "[excerpt %d, note %s, similarity %.2f]\n%s\n\n",
			i+1, hit.Embedding.SoapNoteId, hit.Similarity, hit.Embedding.Chunk)
		if !seen[hit.Embedding.SoapNoteId] {
			seen[hit.Embedding.SoapNoteId] = true
			citedNoteIds = append(citedNoteIds, hit.Embedding.SoapNoteId)
		}
	}
	return sb.String(), citedNoteIds
}

func (s *chatbotService) loadHistory(ctx context.Context, uow unitofwork.UnitOfWork, chatSessionId uuid.UUID) ([]llm.Message, error) {
	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionId{ChatSessionId: chatSessionId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}
	if len(messages) > historyWindow {
		messages = messages[len(messages)-historyWindow:]
	}
	history := make([]llm.Message, 0, len(messages))
	for _, message := range messages {
		history = append(history, llm.Message{Role: message.Role, Content: message.Content})
	}
	return history, nil
}

// citationsFor resolves note ids to patient-facing citation entries. Notes
// deleted since the answer was written are silently dropped.
func (s *chatbotService) citationsFor(ctx context.Context, uow unitofwork.UnitOfWork, noteIds []uuid.UUID) []dto.CitationDTO {
	if len(noteIds) == 0 {
		return nil
	}
	citations := make([]dto.CitationDTO, 0, len(noteIds))
	for _, noteId := range noteIds {
		note, err := uow.SoapNoteRepository().FindOne(ctx, specification.ByID{ID: noteId})
		if err != nil || note == nil {
			continue
		}
		citation := dto.CitationDTO{NoteId: note.Id, SessionId: note.SessionId}
		if session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: note.SessionId}); err == nil && session != nil {
			if patient, err := uow.PatientRepository().FindOne(ctx, specification.ByID{ID: session.PatientId}); err == nil && patient != nil {
				citation.PatientName = patient.FullName()
			}
		}
		citations = append(citations, citation)
	}
	return citations
}

func (s *chatbotService) ownedSession(ctx context.Context, uow unitofwork.UnitOfWork, userId, chatSessionId uuid.UUID) (*entity.ChatSession, error) {
	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: chatSessionId},
		specification.ByUserId{UserId: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrChatSessionNotFound
	}
	return session, nil
}

func titleFromQuestion(question string) string {
	title := strings.TrimSpace(question)
	if title == "" {
		return defaultChatTitle
	}
	runes := []rune(title)
	if len(runes) > 60 {
		title = strings.TrimSpace(string(runes[:60])) + "..."
	}
	return title
}
