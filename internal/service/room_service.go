package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xmustafa5/TimeClass-sub001/internal/dto"
	"github.com/xmustafa5/TimeClass-sub001/internal/model"
	"github.com/xmustafa5/TimeClass-sub001/internal/repository"
)

// ── 教室模块业务错误 ──

var (
	ErrRoomNotFound   = errors.New("教室不存在")
	ErrRoomNameExists = errors.New("教室名称已存在")
)

// RoomService 教室业务接口
type RoomService interface {
	Create(ctx context.Context, req *dto.CreateRoomRequest) (*dto.RoomResponse, error)
	GetByID(ctx context.Context, id string) (*dto.RoomResponse, error)
	List(ctx context.Context, req *dto.RoomListRequest) ([]dto.RoomResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateRoomRequest) (*dto.RoomResponse, error)
	Delete(ctx context.Context, id string) error
}

type roomService struct {
	repo   *repository.Repository
	guard  *CommitGuard
	logger *zap.Logger
}

// NewRoomService 创建 RoomService 实例
func NewRoomService(repo *repository.Repository, guard *CommitGuard, logger *zap.Logger) RoomService {
	return &roomService{repo: repo, guard: guard, logger: logger}
}

func (s *roomService) Create(ctx context.Context, req *dto.CreateRoomRequest) (*dto.RoomResponse, error) {
	if err := s.ensureNameFree(ctx, req.Name, ""); err != nil {
		return nil, err
	}

	room := &model.Room{
		ID:       uuid.NewString(),
		Name:     req.Name,
		Capacity: req.Capacity,
		Type:     req.Type,
	}
	if err := s.repo.Room.Create(ctx, room); err != nil {
		s.logger.Error("创建教室失败", zap.Error(err))
		return nil, err
	}

	return toRoomResponse(room), nil
}

func (s *roomService) GetByID(ctx context.Context, id string) (*dto.RoomResponse, error) {
	room, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toRoomResponse(room), nil
}

func (s *roomService) List(ctx context.Context, req *dto.RoomListRequest) ([]dto.RoomResponse, error) {
	rooms, err := s.repo.Room.List(ctx, req.Type)
	if err != nil {
		s.logger.Error("列出教室失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.RoomResponse, 0, len(rooms))
	for i := range rooms {
		result = append(result, *toRoomResponse(&rooms[i]))
	}
	return result, nil
}

func (s *roomService) Update(ctx context.Context, id string, req *dto.UpdateRoomRequest) (*dto.RoomResponse, error) {
	room, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != room.Name {
		if err := s.ensureNameFree(ctx, *req.Name, id); err != nil {
			return nil, err
		}
		room.Name = *req.Name
	}
	if req.Capacity != nil {
		room.Capacity = *req.Capacity
	}
	if req.Type != nil {
		room.Type = *req.Type
	}

	if err := s.repo.Room.Update(ctx, room); err != nil {
		s.logger.Error("更新教室失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toRoomResponse(room), nil
}

func (s *roomService) Delete(ctx context.Context, id string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}

	err := s.guard.Cascade(ctx, func(ctx context.Context, tx repository.TxRepositories) error {
		if _, err := tx.ScheduleEntry.DeleteWhere(ctx, repository.EntryFilter{RoomID: id}); err != nil {
			return err
		}
		return tx.Room.Delete(ctx, id)
	})
	if err != nil {
		s.logger.Error("删除教室失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *roomService) get(ctx context.Context, id string) (*model.Room, error) {
	room, err := s.repo.Room.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		s.logger.Error("查询教室失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return room, nil
}

func (s *roomService) ensureNameFree(ctx context.Context, name, selfID string) error {
	existing, err := s.repo.Room.GetByName(ctx, name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询教室失败", zap.Error(err))
		return err
	}
	if existing != nil && existing.ID != selfID {
		return ErrRoomNameExists
	}
	return nil
}

func toRoomResponse(r *model.Room) *dto.RoomResponse {
	return &dto.RoomResponse{ID: r.ID, Name: r.Name, Capacity: r.Capacity, Type: r.Type}
}
