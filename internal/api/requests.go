// Medfeed - Personalized Article Feed Service
// Copyright 2026 Medfeed Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medfeed/medfeed

package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance. It is safe for
// concurrent use and caches struct metadata.
var validate = validator.New()

// FeedRequest represents the validated query parameters for the /feed endpoint.
//
// Fields:
//   - UserID: Required user identifier
//   - Refresh: Ask for a page of unseen articles
//   - View: Presentation order ("latest" keeps catalog order,
//     "recommended" ranks by profile similarity)
type FeedRequest struct {
	UserID  string `validate:"required,min=1,max=128"`
	Refresh bool
	View    string `validate:"omitempty,oneof=latest recommended"`
}

// RecordReadRequest represents the request body for POST /users/{userID}/reads.
type RecordReadRequest struct {
	ArticleID string `json:"article_id" validate:"required,min=1,max=256"`
	Source    string `json:"source" validate:"omitempty,oneof=click like"`
}

// UpdateInterestsRequest represents the request body for PUT /users/{userID}/interests.
// An empty category list is valid and zeroes the preference vector.
type UpdateInterestsRequest struct {
	Categories []string `json:"categories" validate:"required,max=32,dive,min=1,max=64"`
}

// SavedListRequest represents the validated query parameters for
// GET /users/{userID}/saved.
type SavedListRequest struct {
	Limit int `validate:"min=1,max=500"`
}

// validateRequest runs struct validation and flattens the result
// into one error message per failed field.
func validateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}

	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
