package middleware

import (
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
)

type redismockClient struct {
	client *redis.Client
	mock   redismock.ClientMock
}

func newRedisMock() *redismockClient {
	client, mock := redismock.NewClientMock()
	return &redismockClient{client: client, mock: mock}
}
