package repository

import (
	"context"
	"errors"

	"github.com/shreyea/write/internal/models"

	"gorm.io/gorm"
)

// Sentinel errors surfaced by the friend request state machine. The service
// layer maps them onto the error taxonomy.
var (
	ErrSelfFriendRequest     = errors.New("cannot send a friend request to yourself")
	ErrFriendRequestExists   = errors.New("an active friend request already exists between these users")
	ErrFriendRequestNotFound = errors.New("friend request not found")
)

// FriendRepository defines the interface for friend request data operations
type FriendRepository interface {
	CreateRequest(ctx context.Context, requesterID, receiverID uint) (*models.FriendRequest, error)
	GetByID(ctx context.Context, id uint) (*models.FriendRequest, error)
	GetActiveBetween(ctx context.Context, userID1, userID2 uint) (*models.FriendRequest, error)
	GetBetween(ctx context.Context, userID1, userID2 uint) (*models.FriendRequest, error)
	GetPendingReceived(ctx context.Context, userID uint) ([]models.FriendRequest, error)
	GetSentPending(ctx context.Context, userID uint) ([]models.FriendRequest, error)
	GetFriends(ctx context.Context, userID uint) ([]models.User, error)
	Respond(ctx context.Context, requestID, receiverID uint, status models.FriendRequestStatus) error
}

type friendRepository struct {
	db *gorm.DB
}

// NewFriendRepository creates a new friend repository
func NewFriendRepository(db *gorm.DB) FriendRepository {
	return &friendRepository{db: db}
}

// CreateRequest inserts a pending request from requester to receiver. The
// duplicate check and the insert run in one transaction so two racing
// requests cannot both land. Rejected rows do not block a retry.
func (r *friendRepository) CreateRequest(ctx context.Context, requesterID, receiverID uint) (*models.FriendRequest, error) {
	if requesterID == receiverID {
		return nil, ErrSelfFriendRequest
	}

	request := &models.FriendRequest{
		RequesterID: requesterID,
		ReceiverID:  receiverID,
		Status:      models.FriendRequestPending,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var receiver models.User
		if err := tx.First(&receiver, receiverID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", receiverID)
			}
			return models.NewInternalError(err)
		}

		var count int64
		if err := tx.Model(&models.FriendRequest{}).
			Where("((requester_id = ? AND receiver_id = ?) OR (requester_id = ? AND receiver_id = ?)) AND status IN ?",
				requesterID, receiverID, receiverID, requesterID,
				[]models.FriendRequestStatus{models.FriendRequestPending, models.FriendRequestAccepted}).
			Count(&count).Error; err != nil {
			return models.NewInternalError(err)
		}
		if count > 0 {
			return ErrFriendRequestExists
		}

		if err := tx.Create(request).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

func (r *friendRepository) GetByID(ctx context.Context, id uint) (*models.FriendRequest, error) {
	var request models.FriendRequest
	if err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("Receiver").
		First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("FriendRequest", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &request, nil
}

// GetActiveBetween returns the pending or accepted request between two users
// in either direction, or nil if none exists.
func (r *friendRepository) GetActiveBetween(ctx context.Context, userID1, userID2 uint) (*models.FriendRequest, error) {
	var request models.FriendRequest
	if err := r.db.WithContext(ctx).
		Where("((requester_id = ? AND receiver_id = ?) OR (requester_id = ? AND receiver_id = ?)) AND status IN ?",
			userID1, userID2, userID2, userID1,
			[]models.FriendRequestStatus{models.FriendRequestPending, models.FriendRequestAccepted}).
		First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &request, nil
}

// GetBetween returns the most recent request between two users regardless of
// status, or nil if none exists.
func (r *friendRepository) GetBetween(ctx context.Context, userID1, userID2 uint) (*models.FriendRequest, error) {
	var request models.FriendRequest
	if err := r.db.WithContext(ctx).
		Where("(requester_id = ? AND receiver_id = ?) OR (requester_id = ? AND receiver_id = ?)",
			userID1, userID2, userID2, userID1).
		Order("created_at DESC").
		First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &request, nil
}

func (r *friendRepository) GetPendingReceived(ctx context.Context, userID uint) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	if err := r.db.WithContext(ctx).
		Where("receiver_id = ? AND status = ?", userID, models.FriendRequestPending).
		Preload("Requester").
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return requests, nil
}

func (r *friendRepository) GetSentPending(ctx context.Context, userID uint) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	if err := r.db.WithContext(ctx).
		Where("requester_id = ? AND status = ?", userID, models.FriendRequestPending).
		Preload("Receiver").
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return requests, nil
}

func (r *friendRepository) GetFriends(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Table("users").
		Joins("JOIN friend_requests fr ON (users.id = fr.requester_id OR users.id = fr.receiver_id)").
		Where("fr.status = ? AND (fr.requester_id = ? OR fr.receiver_id = ?) AND users.id != ?",
			models.FriendRequestAccepted, userID, userID, userID).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// Respond accepts or rejects a pending request. The receiver scoping and the
// pending guard ride in the WHERE clause; zero rows affected means the
// request does not exist, belongs to someone else, or was already resolved.
func (r *friendRepository) Respond(ctx context.Context, requestID, receiverID uint, status models.FriendRequestStatus) error {
	if status != models.FriendRequestAccepted && status != models.FriendRequestRejected {
		return models.NewValidationError("status must be accepted or rejected")
	}

	result := r.db.WithContext(ctx).
		Model(&models.FriendRequest{}).
		Where("id = ? AND receiver_id = ? AND status = ?", requestID, receiverID, models.FriendRequestPending).
		Update("status", status)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrFriendRequestNotFound
	}
	return nil
}
