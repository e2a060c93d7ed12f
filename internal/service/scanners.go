package service

import (
	"context"
	"fmt"
	"time"

	"manu4/internal/domain"
	"manu4/internal/models"

	"go.uber.org/zap"
)

type EquipmentStore interface {
	ListInFailure() ([]models.Equipment, error)
}

type ServiceOrderStore interface {
	ListOverdueOpen(now time.Time) ([]models.ServiceOrder, error)
}

// EventDispatcher is the dispatcher as the scanners see it.
type EventDispatcher interface {
	Dispatch(ctx context.Context, ev Event) (*Result, error)
}

// Scanner inspects domain state on a schedule and originates dispatch events
// when a condition is met.
type Scanner struct {
	equipment  EquipmentStore
	orders     ServiceOrderStore
	dispatcher EventDispatcher
	log        *zap.Logger
}

func NewScanner(equipment EquipmentStore, orders ServiceOrderStore, dispatcher EventDispatcher, log *zap.Logger) *Scanner {
	return &Scanner{
		equipment:  equipment,
		orders:     orders,
		dispatcher: dispatcher,
		log:        log,
	}
}

// CheckEquipmentFailures raises one equipment_failure event per equipment in
// failure state. The dispatcher's dedup window keeps repeated ticks from
// re-notifying the same equipment.
func (s *Scanner) CheckEquipmentFailures(ctx context.Context) error {
	list, err := s.equipment.ListInFailure()
	if err != nil {
		return fmt.Errorf("list failed equipment: %w", err)
	}
	for _, eq := range list {
		res, err := s.dispatcher.Dispatch(ctx, Event{
			Type:        domain.NotifEquipmentFailure,
			Title:       "Equipment failure",
			Message:     fmt.Sprintf("%s (%s) entered failure state", eq.Name, eq.Code),
			RelatedID:   eq.ID,
			RelatedType: domain.RelatedTypeEquipment,
			AllActive:   true,
		})
		if err != nil {
			s.log.Warn("equipment failure dispatch failed", zap.Uint("equipment_id", eq.ID), zap.Error(err))
			continue
		}
		if res.Created > 0 {
			s.log.Info("equipment failure notified",
				zap.Uint("equipment_id", eq.ID),
				zap.Int("created", res.Created),
				zap.Int("push_sent", res.PushSent))
		}
	}
	return nil
}

// CheckMaintenanceDue is intentionally inert. The maintenance-due job stays
// registered so re-enabling it is a configuration change, not a redesign.
func (s *Scanner) CheckMaintenanceDue(ctx context.Context) error {
	s.log.Debug("maintenance-due check is disabled")
	return nil
}

// CheckServiceOrders raises service_order_update events for open orders past
// their scheduled date, addressed to the assignee when there is one.
func (s *Scanner) CheckServiceOrders(ctx context.Context) error {
	list, err := s.orders.ListOverdueOpen(time.Now())
	if err != nil {
		return fmt.Errorf("list overdue orders: %w", err)
	}
	for _, so := range list {
		ev := Event{
			Type:        domain.NotifServiceOrderUpdate,
			Title:       "Service order overdue",
			Message:     fmt.Sprintf("Service order #%d is past its scheduled date", so.ID),
			RelatedID:   so.ID,
			RelatedType: domain.RelatedTypeServiceOrder,
		}
		if so.AssignedTo != nil {
			ev.Recipients = []uint{*so.AssignedTo}
		} else {
			ev.AllActive = true
		}
		if _, err := s.dispatcher.Dispatch(ctx, ev); err != nil {
			s.log.Warn("service order dispatch failed", zap.Uint("order_id", so.ID), zap.Error(err))
		}
	}
	return nil
}
