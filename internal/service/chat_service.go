package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"discharge-assistant-be/internal/dto"
	"discharge-assistant-be/internal/entity"
	"discharge-assistant-be/internal/pkg/logger"
	"discharge-assistant-be/internal/repository/contract"
	"discharge-assistant-be/pkg/events"
)

const (
	FallbackResponse    = "Something went wrong. Please try again."
	sessionResetMessage = "Session reset successfully"
	sessionLockStripes  = 64
)

type IChatService interface {
	HandleMessage(ctx context.Context, req *dto.ChatMessageRequest) (*dto.ChatMessageResponse, error)
	ResetSession(ctx context.Context, sessionId string) (*dto.ResetSessionResponse, error)
	GetSession(ctx context.Context, sessionId string) (*dto.GetSessionResponse, error)
	Greeting() *dto.GreetingResponse
	ListPatients() *dto.ListPatientsResponse
}

// stripedLock serialises work per session id without tracking every id.
type stripedLock struct {
	stripes [sessionLockStripes]sync.Mutex
}

func (l *stripedLock) lock(key string) func() {
	h := fnv.New32a()
	h.Write([]byte(key))
	m := &l.stripes[h.Sum32()%sessionLockStripes]
	m.Lock()
	return m.Unlock
}

type chatService struct {
	sessions     contract.ChatSessionRepository
	receptionist IReceptionistService
	clinical     IClinicalService
	patients     IPatientService
	audit        IAuditService
	log          logger.ILogger
	locks        stripedLock
	now          func() time.Time
}

func NewChatService(
	sessions contract.ChatSessionRepository,
	receptionist IReceptionistService,
	clinical IClinicalService,
	patients IPatientService,
	audit IAuditService,
	log logger.ILogger,
) IChatService {
	return &chatService{
		sessions:     sessions,
		receptionist: receptionist,
		clinical:     clinical,
		patients:     patients,
		audit:        audit,
		log:          log,
		now:          time.Now,
	}
}

func (c *chatService) HandleMessage(ctx context.Context, req *dto.ChatMessageRequest) (*dto.ChatMessageResponse, error) {
	message := strings.TrimSpace(req.Message)
	c.log.Info("CHAT", "Chat received", map[string]interface{}{
		"session_id":   req.SessionId,
		"message":      truncateRunes(message, 50),
		"patient_name": req.PatientName,
	})

	unlock := c.locks.lock(req.SessionId)
	defer unlock()

	session, ok, err := c.sessions.Get(ctx, req.SessionId)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", req.SessionId, err)
	}
	if !ok {
		session = entity.NewChatSession(req.SessionId, c.now())
	}

	resp := c.route(ctx, session, message)

	if err := c.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session %s: %w", req.SessionId, err)
	}
	return resp, nil
}

func (c *chatService) route(ctx context.Context, session *entity.ChatSession, message string) *dto.ChatMessageResponse {
	switch session.Stage {
	case entity.StageGreeting:
		if strings.EqualFold(message, "start") {
			session.AwaitName(c.now())
			return &dto.ChatMessageResponse{Response: c.receptionist.Greet(), Agent: entity.AgentReceptionist}
		}

	case entity.StageAwaitingName:
		result := c.receptionist.Identify(ctx, message)
		if result.Found {
			session.IdentifyPatient(result.Patient, c.now())
			c.audit.Record(ctx, events.TypePatientIdentified, map[string]interface{}{
				"session_id":   session.Id,
				"patient_name": result.Patient.PatientName,
			})
		}
		return &dto.ChatMessageResponse{
			Response:    result.Response,
			Agent:       entity.AgentReceptionist,
			PatientData: result.Patient,
		}

	case entity.StageConversation:
		if session.CurrentAgent == entity.AgentClinical {
			return c.answerClinically(ctx, session, message)
		}

		result := c.receptionist.HandleGeneral(ctx, message)
		if result.RouteToClinical {
			session.HandOffToClinical(c.now())
			c.log.Info("CHAT", "Routing session to clinical agent", map[string]interface{}{"session_id": session.Id})
			return c.answerClinically(ctx, session, message)
		}
		return &dto.ChatMessageResponse{
			Response:    result.Response,
			Agent:       entity.AgentReceptionist,
			PatientData: session.PatientData,
		}
	}

	return &dto.ChatMessageResponse{Response: FallbackResponse, Agent: entity.AgentSystem}
}

func (c *chatService) answerClinically(ctx context.Context, session *entity.ChatSession, message string) *dto.ChatMessageResponse {
	answer := c.clinical.Answer(ctx, message, session.PatientData)
	sources := answer.Sources
	return &dto.ChatMessageResponse{
		Response:    answer.Response,
		Agent:       entity.AgentClinical,
		PatientData: session.PatientData,
		Sources:     &sources,
	}
}

func (c *chatService) ResetSession(ctx context.Context, sessionId string) (*dto.ResetSessionResponse, error) {
	unlock := c.locks.lock(sessionId)
	defer unlock()

	if err := c.sessions.Delete(ctx, sessionId); err != nil {
		return nil, fmt.Errorf("delete session %s: %w", sessionId, err)
	}
	c.log.Info("CHAT", "Session reset", map[string]interface{}{"session_id": sessionId})
	c.audit.Record(ctx, events.TypeSessionReset, map[string]interface{}{"session_id": sessionId})

	return &dto.ResetSessionResponse{Status: "success", Message: sessionResetMessage}, nil
}

func (c *chatService) GetSession(ctx context.Context, sessionId string) (*dto.GetSessionResponse, error) {
	session, ok, err := c.sessions.Get(ctx, sessionId)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionId, err)
	}
	res := &dto.GetSessionResponse{SessionId: sessionId}
	if ok {
		res.Session = session
	}
	return res, nil
}

func (c *chatService) Greeting() *dto.GreetingResponse {
	return &dto.GreetingResponse{Greeting: c.receptionist.Greet()}
}

func (c *chatService) ListPatients() *dto.ListPatientsResponse {
	return &dto.ListPatientsResponse{Patients: c.patients.ListPatients()}
}
