// Package redis connects to Redis with retries and exposes a ping based
// health check. The development backend keeps its records there when
// REDIS_URL is set.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
package redis
