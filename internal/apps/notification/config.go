/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package notification

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

const mask = "********"

// validate is shared by every config variant.
var validate = validator.New()

// ChannelConfig is one variant of the channel config union.
type ChannelConfig interface {
	// Masked returns a copy safe to show: secrets replaced by a mask.
	Masked() ChannelConfig
	// Summary is a one-line description of the destination.
	Summary() string
}

// EmailConfig sends alerts over SMTP.
type EmailConfig struct {
	SMTPHost string   `json:"smtp_host" validate:"required,hostname|ip"`
	SMTPPort int      `json:"smtp_port" validate:"required,min=1,max=65535"`
	Username string   `json:"username"`
	Password string   `json:"password"`
	From     string   `json:"from" validate:"required,email"`
	To       []string `json:"to" validate:"required,min=1,dive,email"`
}

func (c EmailConfig) Masked() ChannelConfig {
	if c.Password != "" {
		c.Password = mask
	}
	c.To = append([]string(nil), c.To...)
	return c
}

func (c EmailConfig) Summary() string {
	return fmt.Sprintf("%s:%d -> %s", c.SMTPHost, c.SMTPPort, strings.Join(c.To, ", "))
}

// SlackConfig posts to a Slack incoming webhook.
type SlackConfig struct {
	WebhookURL string `json:"webhook_url" validate:"required,url"`
	Channel    string `json:"channel"`
}

func (c SlackConfig) Masked() ChannelConfig {
	c.WebhookURL = maskURL(c.WebhookURL)
	return c
}

func (c SlackConfig) Summary() string {
	if c.Channel != "" {
		return "Slack " + c.Channel
	}
	return "Slack webhook"
}

// WebhookConfig calls an arbitrary HTTP endpoint.
type WebhookConfig struct {
	URL     string            `json:"url" validate:"required,url"`
	Method  string            `json:"method" validate:"omitempty,oneof=GET POST PUT PATCH"`
	Headers map[string]string `json:"headers"`
	Secret  string            `json:"secret"`
}

func (c WebhookConfig) Masked() ChannelConfig {
	c.URL = redactURL(c.URL)
	if c.Secret != "" {
		c.Secret = mask
	}
	if len(c.Headers) > 0 {
		headers := make(map[string]string, len(c.Headers))
		for k := range c.Headers {
			headers[k] = mask
		}
		c.Headers = headers
	}
	return c
}

func (c WebhookConfig) Summary() string {
	method := c.Method
	if method == "" {
		method = "POST"
	}
	return method + " " + redactURL(c.URL)
}

// PagerDutyConfig triggers PagerDuty Events v2 incidents.
type PagerDutyConfig struct {
	RoutingKey string `json:"routing_key" validate:"required"`
	Severity   string `json:"severity" validate:"omitempty,oneof=critical error warning info"`
}

func (c PagerDutyConfig) Masked() ChannelConfig {
	c.RoutingKey = maskTail(c.RoutingKey, 4)
	return c
}

func (c PagerDutyConfig) Summary() string {
	severity := c.Severity
	if severity == "" {
		severity = "critical"
	}
	return "PagerDuty (" + severity + ")"
}

// TeamsConfig posts to a Microsoft Teams webhook.
type TeamsConfig struct {
	WebhookURL string `json:"webhook_url" validate:"required,url"`
}

func (c TeamsConfig) Masked() ChannelConfig {
	c.WebhookURL = maskURL(c.WebhookURL)
	return c
}

func (c TeamsConfig) Summary() string { return "Teams webhook" }

// DiscordConfig posts to a Discord webhook.
type DiscordConfig struct {
	WebhookURL string `json:"webhook_url" validate:"required,url"`
}

func (c DiscordConfig) Masked() ChannelConfig {
	c.WebhookURL = maskURL(c.WebhookURL)
	return c
}

func (c DiscordConfig) Summary() string { return "Discord webhook" }

// DecodeConfig decodes raw into the variant for t and validates it.
// Unknown JSON fields are rejected.
func DecodeConfig(t ChannelType, raw []byte) (ChannelConfig, error) {
	switch t {
	case TypeEmail:
		return decodeAs[EmailConfig](raw)
	case TypeSlack:
		return decodeAs[SlackConfig](raw)
	case TypeWebhook:
		return decodeAs[WebhookConfig](raw)
	case TypePagerDuty:
		return decodeAs[PagerDutyConfig](raw)
	case TypeTeams:
		return decodeAs[TeamsConfig](raw)
	case TypeDiscord:
		return decodeAs[DiscordConfig](raw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
}

func decodeAs[C ChannelConfig](raw []byte) (ChannelConfig, error) {
	var c C
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := validate.Struct(c); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, describe(err))
	}
	return c, nil
}

// describe flattens validator errors into "field: tag" pairs.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		parts = append(parts, field+" failed "+fe.Tag())
	}
	return strings.Join(parts, "; ")
}

// maskURL keeps scheme and host, hiding path and query which carry tokens.
func maskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return mask
	}
	return u.Scheme + "://" + u.Host + "/" + mask
}

// redactURL keeps scheme, host and path but drops userinfo and masks every
// query value.
// redactURL 去掉 URL 中的用户信息并隐藏查询参数值。
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return mask
	}
	out := u.Scheme + "://" + u.Host + u.EscapedPath()
	if u.RawQuery == "" {
		return out
	}
	query := u.Query()
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, url.QueryEscape(k)+"="+mask)
	}
	sort.Strings(keys)
	return out + "?" + strings.Join(keys, "&")
}

func maskTail(s string, keep int) string {
	if len(s) <= keep {
		return mask
	}
	return mask + s[len(s)-keep:]
}
