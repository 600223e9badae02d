/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"lightscript/internal/domain"
)

// SavePattern upserts a pattern definition and replaces its argument rows.
func (s *Store) SavePattern(ctx context.Context, def domain.PatternDef) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save pattern: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO patterns(id, name) VALUES(?, ?)
		 ON CONFLICT(id) DO UPDATE SET name=excluded.name`, def.ID, def.Name); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("upsert pattern: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM pattern_args WHERE pattern_id=?`, def.ID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear pattern args: %w", err)
	}
	for pos, arg := range def.Args {
		var defJSON sql.NullString
		if arg.Default != nil {
			b, err := json.Marshal(arg.Default)
			if err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("encode default for %s.%s: %w", def.Name, arg.Name, err)
			}
			defJSON = sql.NullString{String: string(b), Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO pattern_args(pattern_id, pos, arg_id, name, type, default_json) VALUES(?, ?, ?, ?, ?, ?)`,
			def.ID, pos, arg.ID, arg.Name, string(arg.Type), defJSON); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert pattern arg: %w", err)
		}
	}
	return tx.Commit()
}

// Registry materializes all stored patterns into a PatternRegistry.
func (s *Store) Registry(ctx context.Context) (domain.PatternRegistry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.id, p.name, a.arg_id, a.name, a.type, a.default_json
		 FROM patterns p
		 LEFT JOIN pattern_args a ON a.pattern_id = p.id
		 ORDER BY p.id, a.pos`)
	if err != nil {
		return nil, fmt.Errorf("query patterns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	reg := make(domain.PatternRegistry)
	for rows.Next() {
		var (
			id       int64
			name     string
			argID    sql.NullString
			argName  sql.NullString
			argType  sql.NullString
			defJSON  sql.NullString
		)
		if err := rows.Scan(&id, &name, &argID, &argName, &argType, &defJSON); err != nil {
			return nil, fmt.Errorf("scan pattern: %w", err)
		}
		def, ok := reg[name]
		if !ok {
			def = domain.PatternDef{ID: id, Name: name}
		}
		if argID.Valid {
			arg := domain.PatternArgDef{ID: argID.String, Name: argName.String, Type: domain.ArgType(argType.String)}
			if defJSON.Valid {
				var v any
				if err := json.Unmarshal([]byte(defJSON.String), &v); err == nil {
					arg.Default = v
				}
			}
			def.Args = append(def.Args, arg)
		}
		reg[name] = def
	}
	return reg, rows.Err()
}
