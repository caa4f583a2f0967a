package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Adnan8101/bharatverse/internal/domain/entity"
	"github.com/Adnan8101/bharatverse/internal/domain/repository"
	"github.com/Adnan8101/bharatverse/pkg/errors"
	"github.com/Adnan8101/bharatverse/pkg/logger"
)

type firestoreChatRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRepository(client *firestore.Client) repository.ChatRepository {
	return &firestoreChatRepository{
		client: client,
	}
}

func (r *firestoreChatRepository) conversationRef(id string) *firestore.DocumentRef {
	return r.client.Collection("conversations").Doc(id)
}

// GetOrCreate keys the document by the sorted participant pair, so two
// near-simultaneous first contacts race on the same document ID and the
// transaction leaves exactly one row behind.
func (r *firestoreChatRepository) GetOrCreate(ctx context.Context, participantA, participantB string) (*entity.Conversation, bool, error) {
	pairKey := entity.ConversationPairKey(participantA, participantB)
	docRef := r.conversationRef(pairKey)

	var conversation entity.Conversation
	created := false

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err == nil {
			created = false
			return doc.DataTo(&conversation)
		}
		if status.Code(err) != codes.NotFound {
			return err
		}

		now := time.Now()
		conversation = entity.Conversation{
			ID:           pairKey,
			Participants: []string{participantA, participantB},
			PairKey:      pairKey,
			UnreadCounts: map[string]int{participantA: 0, participantB: 0},
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		created = true
		return tx.Create(docRef, &conversation)
	})
	if err != nil {
		return nil, false, errors.Storage("Failed to get or create conversation", err)
	}

	return &conversation, created, nil
}

func (r *firestoreChatRepository) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	doc, err := r.conversationRef(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Conversation", nil)
		}
		return nil, errors.Storage("Failed to get conversation", err)
	}

	var conversation entity.Conversation
	if err := doc.DataTo(&conversation); err != nil {
		return nil, errors.Storage("Failed to parse conversation data", err)
	}

	return &conversation, nil
}

func (r *firestoreChatRepository) ListByParticipant(ctx context.Context, participantID string) ([]*entity.Conversation, error) {
	// Zero-time lastMessageAt sorts last under Desc, which is exactly the
	// "never messaged" ordering the conversation list wants.
	query := r.client.Collection("conversations").
		Where("participants", "array-contains", participantID).
		OrderBy("lastMessageAt", firestore.Desc)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		logger.Error("Firestore error while fetching conversations for %s: %v", participantID, err)
		return nil, errors.Storage("Failed to fetch conversations", err)
	}

	var conversations []*entity.Conversation
	for _, doc := range docs {
		var conversation entity.Conversation
		if err := doc.DataTo(&conversation); err != nil {
			logger.Warn("Skipping malformed conversation %s: %v", doc.Ref.ID, err)
			continue
		}
		conversations = append(conversations, &conversation)
	}

	return conversations, nil
}

// AppendMessage writes the message and the conversation rollup in one batch:
// a failed message write never leaves a dangling preview, and vice versa.
func (r *firestoreChatRepository) AppendMessage(ctx context.Context, message *entity.Message, recipientID string) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	convRef := r.conversationRef(message.ConversationID)
	msgRef := convRef.Collection("messages").Doc(message.ID)

	batch := r.client.Batch()
	batch.Set(msgRef, message)
	batch.Update(convRef, []firestore.Update{
		{Path: "lastMessage", Value: message.Content},
		{Path: "lastMessageAt", Value: message.CreatedAt},
		{Path: "updatedAt", Value: message.CreatedAt},
		{FieldPath: firestore.FieldPath{"unreadCounts", recipientID}, Value: firestore.Increment(1)},
	})

	if _, err := batch.Commit(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Conversation", err)
		}
		return errors.Storage("Failed to append message", err)
	}

	return nil
}

func (r *firestoreChatRepository) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error) {
	messagesRef := r.conversationRef(conversationID).Collection("messages")

	// Server-side aggregation; reading every document just to count would
	// scale the page fetch with history length.
	countResult, err := messagesRef.NewAggregationQuery().WithCount("total").Get(ctx)
	if err != nil {
		logger.Error("Firestore error while counting messages for conversation %s: %v", conversationID, err)
		return nil, 0, errors.Storage("Failed to count messages", err)
	}
	total := int64(0)
	if v, ok := countResult["total"]; ok {
		if countValue, ok := v.(*firestorepb.Value); ok {
			total = countValue.GetIntegerValue()
		}
	}

	base := messagesRef.
		OrderBy("createdAt", firestore.Asc).
		OrderBy(firestore.DocumentID, firestore.Asc)

	query := base
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	var messages []*entity.Message

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			logger.Error("Firestore error while iterating messages for conversation %s: %v", conversationID, err)
			return nil, 0, errors.Storage("Failed to iterate messages", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			logger.Error("Error parsing message data for conversation %s: %v", conversationID, err)
			return nil, 0, errors.Storage("Failed to parse message data", err)
		}

		messages = append(messages, &message)
	}

	return messages, total, nil
}

// maxWritesPerBatch is Firestore's hard cap on writes per WriteBatch. One
// slot per chunk is reserved for the counter reset that rides the final one.
const maxWritesPerBatch = 500

// readChunks splits the refs so each chunk fits a WriteBatch with room left
// for one extra write.
func readChunks(refs []*firestore.DocumentRef) [][]*firestore.DocumentRef {
	var chunks [][]*firestore.DocumentRef
	for len(refs) > 0 {
		n := len(refs)
		if n > maxWritesPerBatch-1 {
			n = maxWritesPerBatch - 1
		}
		chunks = append(chunks, refs[:n])
		refs = refs[n:]
	}
	return chunks
}

func (r *firestoreChatRepository) MarkMessagesRead(ctx context.Context, conversationID, viewerID string) (int, error) {
	convRef := r.conversationRef(conversationID)

	docs, err := convRef.Collection("messages").
		Where("isRead", "==", false).
		Documents(ctx).GetAll()
	if err != nil {
		return 0, errors.Storage("Failed to query unread messages", err)
	}

	var refs []*firestore.DocumentRef
	for _, doc := range docs {
		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			logger.Warn("Skipping malformed message %s in conversation %s: %v", doc.Ref.ID, conversationID, err)
			continue
		}
		// The viewer's own outgoing messages stay unread until the other
		// side acknowledges them.
		if message.SenderID == viewerID {
			continue
		}
		refs = append(refs, doc.Ref)
	}

	counterReset := []firestore.Update{
		{FieldPath: firestore.FieldPath{"unreadCounts", viewerID}, Value: 0},
	}

	// Commit the flips chunk by chunk, the counter reset riding the last
	// chunk. A mid-sequence failure leaves the counter untouched, so a
	// retried call re-flips whatever remains.
	chunks := readChunks(refs)
	if len(chunks) == 0 {
		chunks = [][]*firestore.DocumentRef{nil}
	}
	for i, chunk := range chunks {
		batch := r.client.Batch()
		for _, ref := range chunk {
			batch.Update(ref, []firestore.Update{{Path: "isRead", Value: true}})
		}
		if i == len(chunks)-1 {
			batch.Update(convRef, counterReset)
		}
		if _, err := batch.Commit(ctx); err != nil {
			if status.Code(err) == codes.NotFound {
				return 0, errors.NotFound("Conversation", err)
			}
			return 0, errors.Storage("Failed to mark messages read", err)
		}
	}

	return len(refs), nil
}
