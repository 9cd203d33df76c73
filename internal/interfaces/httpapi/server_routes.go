package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("GET /v1/achievements/catalog", handler.AchievementCatalog)
}

func registerTournamentRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/tournaments", RequireAuth(verifier, http.HandlerFunc(handler.CreateTournament)))
	mux.Handle("GET /v1/tournaments", RequireAuth(verifier, http.HandlerFunc(handler.ListTournaments)))
	mux.Handle("POST /v1/tournaments/join", RequireAuth(verifier, http.HandlerFunc(handler.JoinTournamentByCode)))
	mux.Handle("GET /v1/tournaments/code/{code}", RequireAuth(verifier, http.HandlerFunc(handler.GetTournamentByCode)))
	mux.Handle("GET /v1/tournaments/{tournamentID}", RequireAuth(verifier, http.HandlerFunc(handler.GetTournament)))
	mux.Handle("POST /v1/tournaments/{tournamentID}/join", RequireAuth(verifier, http.HandlerFunc(handler.JoinTournament)))
	mux.Handle("POST /v1/tournaments/{tournamentID}/start", RequireAuth(verifier, http.HandlerFunc(handler.StartTournamentEarly)))
	mux.Handle("POST /v1/tournaments/{tournamentID}/cancel", RequireAuth(verifier, http.HandlerFunc(handler.CancelTournament)))
	mux.Handle("GET /v1/tournaments/{tournamentID}/participants", RequireAuth(verifier, http.HandlerFunc(handler.ListParticipants)))
	mux.Handle("DELETE /v1/tournaments/{tournamentID}/participants/{userID}", RequireAuth(verifier, http.HandlerFunc(handler.KickParticipant)))
	mux.Handle("GET /v1/tournaments/{tournamentID}/leaderboard", RequireAuth(verifier, http.HandlerFunc(handler.GetLeaderboard)))
}

func registerTradingRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/tournaments/{tournamentID}/trades/buy", RequireAuth(verifier, http.HandlerFunc(handler.Buy)))
	mux.Handle("POST /v1/tournaments/{tournamentID}/trades/sell", RequireAuth(verifier, http.HandlerFunc(handler.Sell)))
	mux.Handle("GET /v1/tournaments/{tournamentID}/portfolio", RequireAuth(verifier, http.HandlerFunc(handler.GetPortfolio)))
}

func registerAccountRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/me/wallet", RequireAuth(verifier, http.HandlerFunc(handler.GetMyWallet)))
	mux.Handle("GET /v1/me/achievements", RequireAuth(verifier, http.HandlerFunc(handler.GetMyAchievements)))
}

// Admin routes only authenticate here; the role check lives in the usecase layer.
func registerAdminRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/admin/wallets/deposit", RequireAuth(verifier, http.HandlerFunc(handler.Deposit)))
	mux.Handle("POST /v1/admin/sweeps", RequireAuth(verifier, http.HandlerFunc(handler.RunExpirationSweep)))
}
