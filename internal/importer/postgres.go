package importer

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"doctor-registry/internal/domain"

	"go.uber.org/zap"
)

const TableName = "doctores"

// PostgresWriter 把表格数据写入 doctores 表
type PostgresWriter struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresWriter(db *sql.DB, logger *zap.Logger) *PostgresWriter {
	return &PostgresWriter{db: db, logger: logger}
}

// CreateTableSQL 根据字段 schema 生成建表语句
func CreateTableSQL() string {
	cols := []string{"id SERIAL PRIMARY KEY"}
	for _, f := range domain.EditableFields() {
		typ := "TEXT"
		if f.Date {
			typ = "DATE"
		}
		cols = append(cols, fmt.Sprintf("%s %s", f.Name, typ))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", TableName, strings.Join(cols, ",\n\t"))
}

// UpsertSQL 按 identificador_imss 冲突更新
func UpsertSQL() string {
	fields := domain.EditableFields()
	names := make([]string, 0, len(fields))
	placeholders := make([]string, 0, len(fields))
	updates := make([]string, 0, len(fields))
	for i, f := range fields {
		names = append(names, f.Name)
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		if f.Name != "identificador_imss" {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", f.Name, f.Name))
		}
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (identificador_imss) DO UPDATE SET %s",
		TableName,
		strings.Join(names, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)
}

// EnsureTable 创建表和 identificador_imss 唯一索引
func (w *PostgresWriter) EnsureTable(ctx context.Context) error {
	if _, err := w.db.ExecContext(ctx, CreateTableSQL()); err != nil {
		return fmt.Errorf("failed to create table %s: %w", TableName, err)
	}
	index := fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS %s_identificador_imss_key ON %s (identificador_imss)", TableName, TableName)
	if _, err := w.db.ExecContext(ctx, index); err != nil {
		return fmt.Errorf("failed to create unique index: %w", err)
	}
	return nil
}

// Upsert 在一个事务中写入所有档案，返回写入条数
func (w *PostgresWriter) Upsert(ctx context.Context, doctors []domain.Doctor) (int, error) {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, UpsertSQL())
	if err != nil {
		return 0, fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	fields := domain.EditableFields()
	for i := range doctors {
		d := &doctors[i]
		args := make([]any, len(fields))
		for j, f := range fields {
			v, _ := d.Value(f.Name)
			if v == nil || *v == "" {
				args[j] = nil
				continue
			}
			args[j] = *v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			w.logger.Error("Failed to upsert doctor",
				zap.Int("row", i+2),
				zap.Stringp("identificador_imss", d.IdentificadorIMSS),
				zap.Error(err),
			)
			return 0, fmt.Errorf("failed to upsert row %d: %w", i+2, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	w.logger.Info("Doctors imported", zap.Int("count", len(doctors)))
	return len(doctors), nil
}
