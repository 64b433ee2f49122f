package service

import (
	"errors"

	"go-construction-inventory/internal/model"
	"go-construction-inventory/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const notificationListLimit = 50

type NotificationService interface {
	NotifyRole(roleCode, title, message, kind string) error
	NotifyUser(userID uuid.UUID, title, message, kind string) error
	GetNotifications(userID uuid.UUID) ([]model.Notification, error)
	MarkRead(id, userID uuid.UUID) error
	UnreadCount(userID uuid.UUID) (int64, error)
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	events           EventPublisher
}

func NewNotificationService(notificationRepo repository.NotificationRepository, userRepo repository.UserRepository, events EventPublisher) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		events:           publisherOrNop(events),
	}
}

// NotifyRole creates one notification per user holding roleCode and pushes them over the websocket.
func (s *notificationService) NotifyRole(roleCode, title, message, kind string) error {
	users, err := s.userRepo.FindByRoleCode(roleCode)
	if err != nil {
		return err
	}

	notifications := make([]model.Notification, 0, len(users))
	for _, u := range users {
		notifications = append(notifications, model.Notification{
			UserID:  u.ID,
			Title:   title,
			Message: message,
			Type:    kind,
		})
	}
	if err := s.notificationRepo.CreateBatch(notifications); err != nil {
		return err
	}

	for _, n := range notifications {
		s.events.Publish(eventNotification, n)
	}
	return nil
}

func (s *notificationService) NotifyUser(userID uuid.UUID, title, message, kind string) error {
	n := model.Notification{UserID: userID, Title: title, Message: message, Type: kind}
	if err := s.notificationRepo.CreateBatch([]model.Notification{n}); err != nil {
		return err
	}
	s.events.Publish(eventNotification, n)
	return nil
}

func (s *notificationService) GetNotifications(userID uuid.UUID) ([]model.Notification, error) {
	return s.notificationRepo.FindByUser(userID, notificationListLimit)
}

func (s *notificationService) MarkRead(id, userID uuid.UUID) error {
	err := s.notificationRepo.MarkRead(id, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("Notification not found")
	}
	return err
}

func (s *notificationService) UnreadCount(userID uuid.UUID) (int64, error) {
	return s.notificationRepo.CountUnread(userID)
}
