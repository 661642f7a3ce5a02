/*
Package resilience provides the circuit breaker the engine client wraps
around its RPCs.

# States

	Closed --[ReadyToTrip]-> Open --[Timeout]-> Half-Open --[MaxRequests successes]-> Closed
	                                               |
	                                           [failure]
	                                               v
	                                             Open

# Usage

	breaker := resilience.New("engine", resilience.Settings{
		MaxRequests: 3,
		Timeout:     10 * time.Second,
		// Caller errors say nothing about server health.
		IsSuccessful: func(err error) bool {
			return err == nil || status.Code(err) == codes.InvalidArgument
		},
	})

	reply, err := resilience.Do(breaker, func() (*pb.PiReply, error) {
		return client.EstimatePi(ctx, req)
	})
*/
package resilience
