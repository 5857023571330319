/*
Copyright 2024 Klub Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/klub-pratel/klub/internal/apierror"
	conditions "github.com/klub-pratel/klub/internal/condition"
	"github.com/klub-pratel/klub/model"
)

// CreateNamedCondition validates and stores a condition tree in its
// normalized JSON form.
func (d Datasource) CreateNamedCondition(ctx context.Context, cond model.NamedCondition) (model.NamedCondition, error) {
	if err := conditions.Validate(cond.Root); err != nil {
		return cond, apierror.NewAPIError(apierror.ErrInvalidInput, "invalid condition", err)
	}
	tree, err := conditions.MarshalNode(cond.Root)
	if err != nil {
		return cond, err
	}

	cond.ConditionID = GenerateUUIDWithSuffix("cnd")
	cond.CreatedAt = time.Now()
	_, err = d.Conn.ExecContext(ctx, `
		INSERT INTO named_conditions (condition_id, name, condition_tree, created_at)
		VALUES ($1, $2, $3, $4)
	`, cond.ConditionID, cond.Name, tree, cond.CreatedAt)
	return cond, err
}

// GetNamedCondition retrieves a condition by ID and rebuilds its tree.
func (d Datasource) GetNamedCondition(ctx context.Context, id string) (*model.NamedCondition, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT condition_id, name, condition_tree, created_at
		FROM named_conditions WHERE condition_id = $1
	`, id)
	cond, err := scanNamedCondition(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "named condition not found", id)
		}
		return nil, err
	}
	return cond, nil
}

// GetAllNamedConditions retrieves every stored condition.
func (d Datasource) GetAllNamedConditions(ctx context.Context) ([]model.NamedCondition, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT condition_id, name, condition_tree, created_at FROM named_conditions ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conds []model.NamedCondition
	for rows.Next() {
		cond, err := scanNamedCondition(rows)
		if err != nil {
			return nil, err
		}
		conds = append(conds, *cond)
	}
	return conds, rows.Err()
}

// UpdateNamedCondition revalidates and replaces a stored tree.
func (d Datasource) UpdateNamedCondition(ctx context.Context, cond *model.NamedCondition) error {
	if err := conditions.Validate(cond.Root); err != nil {
		return apierror.NewAPIError(apierror.ErrInvalidInput, "invalid condition", err)
	}
	tree, err := conditions.MarshalNode(cond.Root)
	if err != nil {
		return err
	}
	_, err = d.Conn.ExecContext(ctx, `
		UPDATE named_conditions SET name = $2, condition_tree = $3 WHERE condition_id = $1
	`, cond.ConditionID, cond.Name, tree)
	return err
}

func scanNamedCondition(row rowScanner) (*model.NamedCondition, error) {
	var c model.NamedCondition
	var tree []byte
	if err := row.Scan(&c.ConditionID, &c.Name, &tree, &c.CreatedAt); err != nil {
		return nil, err
	}
	root, err := conditions.UnmarshalNode(tree)
	if err != nil {
		return nil, err
	}
	c.Root = root
	return &c, nil
}
