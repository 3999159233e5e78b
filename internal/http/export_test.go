package http

// WithGovernor replaces the rate governor.
func WithGovernor(governor *Governor) Option {
	return func(c *Client) {
		c.governor = governor
	}
}
