package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Provider --dir ../domain/quote --output domain/quote --outpkg quotemock --filename provider_mock.go
