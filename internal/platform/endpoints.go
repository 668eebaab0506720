package platform

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/certipro/internal/config"
)

// ExpandPath fills the {placeholders} of template, in order, with the
// path-escaped values. Unfilled placeholders are left as they are.
func ExpandPath(template string, values ...string) string {
	var b strings.Builder
	rest := template
	for _, v := range values {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			break
		}
		closing := strings.IndexByte(rest[open:], '}')
		if closing < 0 {
			break
		}
		b.WriteString(rest[:open])
		b.WriteString(url.PathEscape(v))
		rest = rest[open+closing+1:]
	}
	b.WriteString(rest)
	return b.String()
}

// Dashboard

func (c *Client) DashboardStats(ctx context.Context) (Payload, error) {
	return c.Get(ctx, config.EndpointDashboardStats)
}

func (c *Client) Certificates(ctx context.Context) (Payload, error) {
	return c.Get(ctx, config.EndpointCertificates)
}

func (c *Client) CertificateQRViews(ctx context.Context) (Payload, error) {
	return c.Get(ctx, config.EndpointCertificateQRViews)
}

func (c *Client) Activities(ctx context.Context) (Payload, error) {
	return c.Get(ctx, config.EndpointActivities)
}

func (c *Client) Templates(ctx context.Context) (Payload, error) {
	return c.Get(ctx, config.EndpointTemplates)
}

// Skills

// SkillFilter narrows a skill listing. Zero fields are not sent.
type SkillFilter struct {
	Search   string
	Category string
	Level    string
	Page     int
	Limit    int
}

// Query encodes the filter as URL query parameters
func (f SkillFilter) Query() url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Level != "" {
		q.Set("level", f.Level)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

func (c *Client) Skills(ctx context.Context, filter SkillFilter) (Payload, error) {
	return c.Get(ctx, config.EndpointSkills, WithQuery(filter.Query()))
}

func (c *Client) TrendingSkills(ctx context.Context) (Payload, error) {
	return c.Get(ctx, config.EndpointTrendingSkills)
}

func (c *Client) SkillCategories(ctx context.Context) (Payload, error) {
	return c.Get(ctx, config.EndpointSkillCategories)
}

func (c *Client) Skill(ctx context.Context, skillID string) (Payload, error) {
	return c.Get(ctx, ExpandPath(config.EndpointSkill, skillID))
}

func (c *Client) CanAttempt(ctx context.Context, skillID string) (Payload, error) {
	return c.Get(ctx, ExpandPath(config.EndpointCanAttempt, skillID))
}

func (c *Client) SkillProgress(ctx context.Context, skillID string) (Payload, error) {
	return c.Get(ctx, ExpandPath(config.EndpointSkillProgress, skillID))
}

// Tests

// Answer is one answer saved into a running test session
type Answer struct {
	QuestionID string `json:"questionId"`
	Answer     any    `json:"answer"`
}

func (c *Client) TestStatus(ctx context.Context, skillID string) (Payload, error) {
	return c.Get(ctx, ExpandPath(config.EndpointTestStatus, skillID))
}

func (c *Client) StartTest(ctx context.Context, skillID string) (Payload, error) {
	return c.Post(ctx, ExpandPath(config.EndpointStartTest, skillID), struct{}{})
}

func (c *Client) TestSession(ctx context.Context, sessionID string) (Payload, error) {
	return c.Get(ctx, ExpandPath(config.EndpointTestSession, sessionID))
}

func (c *Client) SaveAnswer(ctx context.Context, sessionID string, answer Answer) (Payload, error) {
	return c.Post(ctx, ExpandPath(config.EndpointSaveAnswer, sessionID), answer)
}

func (c *Client) SubmitTest(ctx context.Context, sessionID string) (Payload, error) {
	return c.Post(ctx, ExpandPath(config.EndpointSubmitTest, sessionID), struct{}{})
}

func (c *Client) TestHistory(ctx context.Context, skillID string) (Payload, error) {
	return c.Get(ctx, ExpandPath(config.EndpointTestHistory, skillID))
}

// Certificates

// VerifyCertificate looks up a certificate by its public code. No session is
// needed.
func (c *Client) VerifyCertificate(ctx context.Context, code string) (Payload, error) {
	return c.Get(ctx, ExpandPath(config.EndpointVerifyCertificate, code), Public())
}
