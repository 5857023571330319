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

// Package daktela mirrors supporter contacts into the Daktela help desk.
package daktela

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/klub-pratel/klub/internal/request"
	"github.com/klub-pratel/klub/model"
)

// Client talks to one Daktela instance.
type Client struct {
	BaseURL string
	Token   string
}

func New(baseURL, token string) *Client {
	return &Client{BaseURL: baseURL, Token: token}
}

// contact is the CRM's contact shape. The local profile ID doubles as the
// CRM contact name so both sides agree on identity.
type contact struct {
	Name      string   `json:"name"`
	FirstName string   `json:"firstname"`
	LastName  string   `json:"lastname"`
	Email     string   `json:"email,omitempty"`
	Numbers   []string `json:"number,omitempty"`
}

type apiResponse struct {
	Error interface{} `json:"error"`
}

// UpsertContact creates or updates the CRM contact for one supporter.
func (c *Client) UpsertContact(ctx context.Context, profile model.Profile, telephones []model.Telephone) error {
	payload := contact{
		Name:      profile.ProfileID,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		Email:     profile.Email,
	}
	if profile.Kind == model.KindCompanyProfile {
		payload.LastName = profile.CompanyName
	}
	for _, tel := range telephones {
		payload.Numbers = append(payload.Numbers, tel.Number)
	}

	body, err := request.ToJsonReq(payload)
	if err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/api/v6/contacts/%s.json?accessToken=%s", c.BaseURL, profile.ProfileID, c.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, body)
	if err != nil {
		return err
	}
	return c.call(req)
}

// DeleteContact removes the CRM contact for one supporter.
func (c *Client) DeleteContact(ctx context.Context, profileID string) error {
	endpoint := fmt.Sprintf("%s/api/v6/contacts/%s.json?accessToken=%s", c.BaseURL, profileID, c.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	return c.call(req)
}

func (c *Client) call(req *http.Request) error {
	var response apiResponse
	resp, err := request.Call(req, &response)
	if err != nil && err != io.EOF {
		return err
	}
	if resp == nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("daktela returned %s", resp.Status)
	}
	return nil
}
