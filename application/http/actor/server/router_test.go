package server

import (
	"context"
	"log/slog"
	"net/netip"
	"testing"

	"basket/application/http"
	"basket/application/http/actor/client"
	"basket/application/util/domain"
	"basket/transport"
	"basket/transport/pipe"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
)

const listenAddr = "127.0.0.1:80"

type person struct {
	Name string `json:"name"`
	Age  uint8  `json:"age"`
}

type RouterTestSuite struct {
	suite.Suite

	transport *pipe.PipeTransport
	logger    *slog.Logger
	clock     *clock.Mock

	client *client.Client

	stops []func()
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func (s *RouterTestSuite) SetupTest() {
	s.transport = pipe.NewPipeTransport()
	s.logger = slog.New(slog.DiscardHandler)
	s.clock = clock.NewMock()

	lookuper := domain.NewMapLookuper(map[string][]netip.Addr{
		"localhost": {netip.MustParseAddr("127.0.0.1")},
	})
	s.client = client.New(s.transport, lookuper, s.logger, s.clock, client.Options{
		CombineAddr: func(ip netip.Addr, port uint16) transport.Addr {
			return pipe.Addr{Name: netip.AddrPortFrom(ip, port).String()}
		},
	})
}

func (s *RouterTestSuite) TearDownTest() {
	for _, stop := range s.stops {
		stop()
	}
	s.stops = nil

	goleak.VerifyNone(s.T())
}

// listen runs router in background until the test ends.
func listen[S any](s *RouterTestSuite, router *Router[S]) {
	l, err := s.transport.Listen(pipe.Addr{Name: listenAddr})
	s.Require().NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- router.Listen(ctx, l)
	}()

	s.stops = append(s.stops, func() {
		cancel()
		s.ErrorIs(<-errCh, context.Canceled)
		s.NoError(l.Close())
	})
}

func (s *RouterTestSuite) newRouter() *Router[struct{}] {
	return New(struct{}{}, s.logger, s.clock)
}

func (s *RouterTestSuite) TestEcho() {
	router := s.newRouter().
		Route("/text", func(_ struct{}, request *http.Request) *http.Response {
			text, err := request.Text()
			if err != nil {
				return http.Status(400)
			}
			return http.Text(200, text)
		}).
		Route("/json", func(_ struct{}, request *http.Request) *http.Response {
			var p person
			if err := request.JSON(&p); err != nil {
				return http.Status(400)
			}
			response, err := http.NewResponseBuilder().JSON(p).Build()
			if err != nil {
				return http.Status(500)
			}
			return response
		})
	listen(s, router)

	s.Run("text", func() {
		response, err := http.Post("http://localhost/text").Body([]byte("ping")).Send(context.Background(), s.client)
		s.Require().NoError(err)

		s.Equal(uint16(200), response.Status())
		value, ok := response.Header(http.HeaderServer)
		s.True(ok)
		s.Equal(ServerName, value)

		text, err := response.Text()
		s.Require().NoError(err)
		s.Equal("ping", text)
	})

	s.Run("json", func() {
		expected := person{Name: "John Doe", Age: 42}
		response, err := http.Post("http://localhost/json").JSON(expected).Send(context.Background(), s.client)
		s.Require().NoError(err)

		s.Equal(uint16(200), response.Status())
		value, ok := response.Header(http.HeaderContentType)
		s.True(ok)
		s.Equal(http.MIMEJSON, value)

		var got person
		s.Require().NoError(response.JSON(&got))
		s.Equal(expected, got)
	})

	s.Run("text without body", func() {
		response, err := http.Post("http://localhost/text").Send(context.Background(), s.client)
		s.Require().NoError(err)
		s.Equal(uint16(400), response.Status())
	})
}

func (s *RouterTestSuite) TestRouteOrder() {
	router := s.newRouter().
		Route("/hello", func(struct{}, *http.Request) *http.Response { return http.Text(200, "hello") }).
		Route("/", func(struct{}, *http.Request) *http.Response { return http.Text(200, "root") })
	listen(s, router)

	testcases := []struct {
		desc     string
		url      string
		expected string
	}{
		{desc: "exact", url: "http://localhost/hello", expected: "hello"},
		{desc: "trailing slash", url: "http://localhost/hello/", expected: "hello"},
		{desc: "with query", url: "http://localhost/hello?name=basket", expected: "hello"},
		{desc: "root", url: "http://localhost/", expected: "root"},
		{desc: "fallback", url: "http://localhost/world", expected: "root"},
	}
	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			response, err := http.Get(tc.url).Send(context.Background(), s.client)
			s.Require().NoError(err)

			text, err := response.Text()
			s.Require().NoError(err)
			s.Equal(tc.expected, text)
		})
	}
}

func (s *RouterTestSuite) TestNotFound() {
	router := s.newRouter().
		Route("/hello", func(struct{}, *http.Request) *http.Response { return http.Text(200, "hello") })
	listen(s, router)

	response, err := http.Get("http://localhost/missing").Send(context.Background(), s.client)
	s.Require().NoError(err)

	s.Equal(uint16(404), response.Status())
	s.Equal(http.Headers{{Name: http.HeaderServer, Value: ServerName}}, response.Headers())
	s.False(response.HasBody())

	_, err = response.Bytes()
	s.ErrorIs(err, http.ErrMissingBody)
}

func (s *RouterTestSuite) TestStatusWithoutBody() {
	router := s.newRouter().
		Route("/teapot", func(struct{}, *http.Request) *http.Response { return http.Status(418) })
	listen(s, router)

	response, err := http.Get("http://localhost/teapot").Send(context.Background(), s.client)
	s.Require().NoError(err)

	s.Equal(uint16(418), response.Status())

	_, err = response.Text()
	s.ErrorIs(err, http.ErrMissingBody)
}

type counter struct{ hits []int }

func (c counter) Clone() counter { return counter{hits: append([]int(nil), c.hits...)} }

func (s *RouterTestSuite) TestStateIsCloned() {
	original := counter{hits: []int{0}}

	router := New(original, s.logger, s.clock).
		Route("/", func(state counter, _ *http.Request) *http.Response {
			state.hits[0]++
			return http.Status(200 + uint16(state.hits[0]))
		})
	listen(s, router)

	for range 3 {
		response, err := http.Get("http://localhost/").Send(context.Background(), s.client)
		s.Require().NoError(err)
		s.Equal(uint16(201), response.Status())
	}
	s.Equal([]int{0}, original.hits)
}

func (s *RouterTestSuite) TestListenAborts() {
	testcases := []struct {
		desc    string
		handle  Handler[struct{}]
		raw     string
		wantErr error
	}{
		{
			desc:    "unknown method",
			handle:  func(struct{}, *http.Request) *http.Response { return http.Status(200) },
			raw:     "BREW /pot HTTP/1.1\r\n\r\n",
			wantErr: http.ErrUnknownMethod,
		},
		{
			desc:    "unsupported version",
			handle:  func(struct{}, *http.Request) *http.Response { return http.Status(200) },
			raw:     "GET / HTTP/1.0\r\n\r\n",
			wantErr: http.ErrUnsupportedVersion,
		},
		{
			desc:   "panic",
			handle: func(struct{}, *http.Request) *http.Response { panic("boom") },
			raw:    "GET / HTTP/1.1\r\n\r\n",
		},
		{
			desc:   "nil response",
			handle: func(struct{}, *http.Request) *http.Response { return nil },
			raw:    "GET / HTTP/1.1\r\n\r\n",
		},
	}
	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			l, err := s.transport.Listen(pipe.Addr{Name: listenAddr})
			s.Require().NoError(err)
			defer l.Close()

			router := s.newRouter().Route("/", tc.handle)

			errCh := make(chan error, 1)
			go func() { errCh <- router.Listen(context.Background(), l) }()

			conn, err := s.transport.Dial(context.Background(), pipe.Addr{Name: listenAddr})
			s.Require().NoError(err)
			defer conn.Close()

			_, err = conn.Write([]byte(tc.raw))
			s.Require().NoError(err)

			err = <-errCh
			s.Error(err)
			if tc.wantErr != nil {
				s.ErrorIs(err, tc.wantErr)
			}
		})
	}
}

func (s *RouterTestSuite) TestListenCancels() {
	l, err := s.transport.Listen(pipe.Addr{Name: listenAddr})
	s.Require().NoError(err)
	defer l.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = s.newRouter().Listen(ctx, l)
	s.ErrorIs(err, context.Canceled)
}

func TestNormalizePath(t *testing.T) {
	testcases := []struct {
		path     string
		expected string
	}{
		{path: "/", expected: "/"},
		{path: "", expected: ""},
		{path: "/hello", expected: "/hello"},
		{path: "/hello/", expected: "/hello"},
		{path: "/hello//", expected: "/hello/"},
	}
	for _, tc := range testcases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, normalizePath(tc.path))
		})
	}
}

func TestCloneState(t *testing.T) {
	type plain struct{ n int }

	p := plain{n: 1}
	cloned := cloneState(p)
	cloned.n++
	assert.Equal(t, 1, p.n)

	c := counter{hits: []int{1}}
	clonedCounter := cloneState(c)
	clonedCounter.hits[0]++
	assert.Equal(t, []int{1}, c.hits)
}
