package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/xmustafa5/TimeClass-sub001/internal/model"
)

// RoomRepository 教室数据访问接口
type RoomRepository interface {
	Create(ctx context.Context, room *model.Room) error
	GetByID(ctx context.Context, id string) (*model.Room, error)
	GetByName(ctx context.Context, name string) (*model.Room, error)
	List(ctx context.Context, roomType string) ([]model.Room, error)
	Update(ctx context.Context, room *model.Room) error
	Delete(ctx context.Context, id string) error
}

type roomRepo struct {
	db *gorm.DB
}

// NewRoomRepo 创建 RoomRepository 实例
func NewRoomRepo(db *gorm.DB) RoomRepository {
	return &roomRepo{db: db}
}

func (r *roomRepo) Create(ctx context.Context, room *model.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

func (r *roomRepo) GetByID(ctx context.Context, id string) (*model.Room, error) {
	var room model.Room
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepo) GetByName(ctx context.Context, name string) (*model.Room, error) {
	var room model.Room
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepo) List(ctx context.Context, roomType string) ([]model.Room, error) {
	var rooms []model.Room
	db := r.db.WithContext(ctx)
	if roomType != "" {
		db = db.Where("type = ?", roomType)
	}
	err := db.Order("name ASC").Find(&rooms).Error
	return rooms, err
}

func (r *roomRepo) Update(ctx context.Context, room *model.Room) error {
	return r.db.WithContext(ctx).
		Model(room).
		Updates(map[string]interface{}{
			"name":     room.Name,
			"capacity": room.Capacity,
			"type":     room.Type,
		}).Error
}

func (r *roomRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Room{}).Error
}
