package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsTable = "timeclass_schema_migrations"

// 同一 (day, period) 下教师、教室、班级各自唯一；冲突引擎之外的最后一道约束
var slotIndexes = []string{
	"uk_entries_teacher_slot",
	"uk_entries_room_slot",
	"uk_entries_section_slot",
}

// RunMigrations 执行打包进二进制的 SQL 迁移
//
// 迁移停在 dirty 状态时拒绝启动：此时唯一索引可能缺失，冲突检测无法兜底。
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	if err := checkSlotIndexes(migrationsFS); err != nil {
		return err
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("加载迁移文件失败: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return fmt.Errorf("创建迁移驱动失败: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("初始化迁移实例失败: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("执行迁移失败: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("读取迁移版本失败: %w", err)
	}
	if dirty {
		return fmt.Errorf("数据库迁移处于 dirty 状态（version=%d），需人工修复后再启动", version)
	}

	logger.Info("数据库迁移完成", zap.Uint("version", version), zap.Strings("slot_indexes", slotIndexes))
	return nil
}

// checkSlotIndexes 确认 up 迁移中声明了全部时段唯一索引
func checkSlotIndexes(fsys fs.FS) error {
	matches, err := fs.Glob(fsys, "migrations/*.up.sql")
	if err != nil {
		return fmt.Errorf("读取迁移文件失败: %w", err)
	}

	var all strings.Builder
	for _, name := range matches {
		b, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("读取迁移文件 %s 失败: %w", name, err)
		}
		all.Write(b)
	}

	schema := all.String()
	for _, idx := range slotIndexes {
		if !strings.Contains(schema, idx) {
			return fmt.Errorf("迁移缺少时段唯一索引 %s", idx)
		}
	}
	return nil
}
