package actors

import (
	"log"
	"time"

	stdctx "context"

	"swapmeet/internal/database"
	"swapmeet/internal/models"
	"swapmeet/internal/notify"
	"swapmeet/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for MessageActor
type (
	CreateMessageMsg struct {
		SenderID   uuid.UUID `json:"senderId"`
		ReceiverID uuid.UUID `json:"receiverId"`
		Text       string    `json:"text"`
	}

	GetMessagesBetweenMsg struct {
		User1ID uuid.UUID `json:"user1Id"`
		User2ID uuid.UUID `json:"user2Id"`
	}

	GetConversationsMsg struct {
		UserID uuid.UUID `json:"userId"`
	}
)

// EventNewMessage is the event name pushed on the recipient's channel
// after a successful send.
const EventNewMessage = "new-message"

// MessageActor owns direct-message persistence and the conversation
// aggregation. Sends commit to the store first, then notify the
// recipient's live channel best-effort; the dispatch outcome never
// reaches the sender.
type MessageActor struct {
	store           database.Store
	dispatcher      notify.Dispatcher
	metrics         *utils.MetricsCollector
	dispatchTimeout time.Duration
}

func NewMessageActor(store database.Store, dispatcher notify.Dispatcher, metrics *utils.MetricsCollector) actor.Actor {
	return &MessageActor{
		store:           store,
		dispatcher:      dispatcher,
		metrics:         metrics,
		dispatchTimeout: 3 * time.Second,
	}
}

func (a *MessageActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *CreateMessageMsg:
		a.handleCreateMessage(context, msg)
	case *GetMessagesBetweenMsg:
		a.handleGetMessagesBetween(context, msg)
	case *GetConversationsMsg:
		a.handleGetConversations(context, msg)
	}
}

func (a *MessageActor) handleCreateMessage(context actor.Context, msg *CreateMessageMsg) {
	startTime := time.Now()

	if msg.SenderID == uuid.Nil || msg.ReceiverID == uuid.Nil || msg.Text == "" {
		context.Respond(utils.NewValidationError("Missing fields"))
		return
	}

	newMessage := &models.Message{
		ID:         uuid.New(),
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Text:       msg.Text,
		CreatedAt:  time.Now().UTC(),
	}

	ctx := stdctx.Background()
	if err := a.store.SaveMessage(ctx, newMessage); err != nil {
		log.Printf("Failed to save message: %v", err)
		context.Respond(utils.NewDatabaseError("Failed to save message", err))
		return
	}

	// Commit, then best-effort notify. The goroutine keeps the dispatch
	// off the response path; a failure here is logged and dropped.
	dispatched := *newMessage
	go func() {
		dispatchCtx, cancel := stdctx.WithTimeout(stdctx.Background(), a.dispatchTimeout)
		defer cancel()

		channel := notify.ChannelForUser(dispatched.ReceiverID)
		if err := a.dispatcher.Dispatch(dispatchCtx, channel, EventNewMessage, &dispatched); err != nil {
			log.Printf("Dispatch of %s to %s failed: %v", EventNewMessage, channel, err)
			a.metrics.IncrementDispatchDrops()
		}
	}()

	a.metrics.AddOperationLatency("create_message", time.Since(startTime))
	log.Printf("New message sent from %s to %s", msg.SenderID, msg.ReceiverID)
	context.Respond(newMessage)
}

func (a *MessageActor) handleGetMessagesBetween(context actor.Context, msg *GetMessagesBetweenMsg) {
	if msg.User1ID == uuid.Nil || msg.User2ID == uuid.Nil {
		context.Respond(utils.NewValidationError("Missing user IDs"))
		return
	}

	ctx := stdctx.Background()
	messages, err := a.store.GetMessagesBetweenUsers(ctx, msg.User1ID, msg.User2ID)
	if err != nil {
		context.Respond(utils.NewDatabaseError("Failed to get messages", err))
		return
	}

	if messages == nil {
		messages = []*models.Message{}
	}
	context.Respond(messages)
}

// handleGetConversations scans the user's messages newest-first and
// keeps the first message seen per partner: that is the most recent one,
// and it becomes the partner's summary. Output order is first-encounter
// order, i.e. conversations sorted by recency of last message.
func (a *MessageActor) handleGetConversations(context actor.Context, msg *GetConversationsMsg) {
	startTime := time.Now()

	ctx := stdctx.Background()
	messages, err := a.store.GetMessagesByUser(ctx, msg.UserID)
	if err != nil {
		context.Respond(utils.NewDatabaseError("Failed to get conversations", err))
		return
	}

	conversations := []*models.Conversation{}
	seen := make(map[uuid.UUID]bool)

	for _, message := range messages {
		partnerID := message.SenderID
		if partnerID == msg.UserID {
			partnerID = message.ReceiverID
		}

		if seen[partnerID] {
			continue
		}
		seen[partnerID] = true

		conversation := &models.Conversation{
			PartnerID:       partnerID,
			LastMessageText: message.Text,
			LastMessageTime: message.CreatedAt,
		}

		// A dangling partner reference is possible since receiver ids are
		// not verified on write; the summary then carries an empty name.
		// Anything other than a missing user is a real store failure.
		partner, err := a.store.GetUser(ctx, partnerID)
		switch {
		case err == nil:
			conversation.PartnerName = partner.Name
			conversation.PartnerIsOnline = partner.IsOnline
			conversation.PartnerLastSeenAt = partner.LastSeenAt
		case utils.IsErrorCode(err, utils.ErrUserNotFound):
		default:
			context.Respond(utils.NewDatabaseError("Failed to get conversations", err))
			return
		}

		conversations = append(conversations, conversation)
	}

	a.metrics.AddOperationLatency("get_conversations", time.Since(startTime))
	context.Respond(conversations)
}
