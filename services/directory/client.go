// Package directorysvc fetches students, courses and classes from the school's directory REST API.
package directorysvc

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/escola/core"
	"github.com/trezcool/escola/core/directory"
)

const (
	studentsEndpoint = "/alunos"
	coursesEndpoint  = "/cursos"
	classesEndpoint  = "/turmas"
)

// StatusError is returned when the directory answers with a non 2xx status.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (err StatusError) Error() string {
	return fmt.Sprintf("directory %s: status %d: %s", err.Endpoint, err.StatusCode, err.Body)
}

type Client struct {
	baseURL string
	token   string
	client  *rest.Client
}

var _ directory.Directory = (*Client)(nil) // interface compliance check

func NewClient(conf *core.Config) *Client {
	vala.BeginValidation().Validate(
		vala.IsNotNil(conf, "conf"),
		vala.StringNotEmpty(conf.Directory.BaseURL, "conf.Directory.BaseURL"),
	).CheckAndPanic()

	return &Client{
		baseURL: strings.TrimSuffix(conf.Directory.BaseURL, "/"),
		token:   conf.Directory.Token,
		client:  &rest.Client{HTTPClient: &http.Client{Timeout: conf.Directory.Timeout}},
	}
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req := rest.Request{
		Method:  rest.Get,
		BaseURL: c.baseURL + endpoint,
		Headers: map[string]string{"Accept": "application/json"},
	}
	if c.token != "" {
		req.Headers["Authorization"] = "Bearer " + c.token
	}

	httpReq, err := rest.BuildRequestObject(req)
	if err != nil {
		return nil, errors.Wrapf(err, "building request %s", endpoint)
	}
	httpRes, err := c.client.MakeRequest(httpReq.WithContext(ctx))
	if err != nil {
		return nil, errors.Wrapf(err, "requesting %s", endpoint)
	}
	res, err := rest.BuildResponse(httpRes)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", endpoint)
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return nil, StatusError{Endpoint: endpoint, StatusCode: res.StatusCode, Body: res.Body}
	}
	return []byte(res.Body), nil
}

func (c *Client) Students(ctx context.Context) ([]directory.Student, error) {
	data, err := c.get(ctx, studentsEndpoint)
	if err != nil {
		return nil, err
	}
	return directory.ParseStudents(data)
}

func (c *Client) Courses(ctx context.Context) ([]directory.Course, error) {
	data, err := c.get(ctx, coursesEndpoint)
	if err != nil {
		return nil, err
	}
	return directory.ParseCourses(data)
}

func (c *Client) Classes(ctx context.Context) ([]directory.Class, error) {
	data, err := c.get(ctx, classesEndpoint)
	if err != nil {
		return nil, err
	}
	return directory.ParseClasses(data)
}
