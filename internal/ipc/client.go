package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Start requests the daemon to start its background services.
func (c *Client) Start() (*StartResponse, error) {
	var resp StartResponse
	if err := c.client.Call("Postpilot.Start", StartRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop requests the daemon to stop.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Postpilot.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Postpilot.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PostSchedule creates a post.
func (c *Client) PostSchedule(req PostScheduleRequest) (*PostScheduleResponse, error) {
	var resp PostScheduleResponse
	if err := c.client.Call("Postpilot.PostSchedule", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PostList returns posts optionally filtered by state and platform.
func (c *Client) PostList(req PostListRequest) (*PostListResponse, error) {
	var resp PostListResponse
	if err := c.client.Call("Postpilot.PostList", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PostDescribe returns a post with its delivery history.
func (c *Client) PostDescribe(id int64) (*PostDescribeResponse, error) {
	var resp PostDescribeResponse
	if err := c.client.Call("Postpilot.PostDescribe", PostDescribeRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PostPromote moves a draft into the scheduler.
func (c *Client) PostPromote(id int64) (*PostPromoteResponse, error) {
	var resp PostPromoteResponse
	if err := c.client.Call("Postpilot.PostPromote", PostPromoteRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PostCancel cancels a draft or scheduled post.
func (c *Client) PostCancel(id int64) (*PostCancelResponse, error) {
	var resp PostCancelResponse
	if err := c.client.Call("Postpilot.PostCancel", PostCancelRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PostRetry reschedules a failed post with a fresh attempt budget.
func (c *Client) PostRetry(id int64) (*PostRetryResponse, error) {
	var resp PostRetryResponse
	if err := c.client.Call("Postpilot.PostRetry", PostRetryRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PostRemove deletes a post and its history.
func (c *Client) PostRemove(id int64) (*PostRemoveResponse, error) {
	var resp PostRemoveResponse
	if err := c.client.Call("Postpilot.PostRemove", PostRemoveRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ClearDelivered removes delivered posts.
func (c *Client) ClearDelivered() (*ClearDeliveredResponse, error) {
	var resp ClearDeliveredResponse
	if err := c.client.Call("Postpilot.ClearDelivered", ClearDeliveredRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Calendar fetches the month grid.
func (c *Client) Calendar(year, month int) (*CalendarResponse, error) {
	var resp CalendarResponse
	if err := c.client.Call("Postpilot.Calendar", CalendarRequest{Year: year, Month: month}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Analytics aggregates the trailing number of days. A non-empty comments
// slice overrides the sentiment data source.
func (c *Client) Analytics(days int, comments []string) (*AnalyticsResponse, error) {
	var resp AnalyticsResponse
	if err := c.client.Call("Postpilot.Analytics", AnalyticsRequest{Days: days, Comments: comments}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Export writes post history as CSV to a server-side path.
func (c *Client) Export(path string) (*ExportResponse, error) {
	var resp ExportResponse
	if err := c.client.Call("Postpilot.Export", ExportRequest{Path: path}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DatabaseHealth retrieves detailed database diagnostics.
func (c *Client) DatabaseHealth() (*DatabaseHealthResponse, error) {
	var resp DatabaseHealthResponse
	if err := c.client.Call("Postpilot.DatabaseHealth", DatabaseHealthRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.client.Call("Postpilot.TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
