// Package server provides HTTP routing, middleware and the catalog handlers.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [BasicRouter] registers routes on an [http.ServeMux] using method patterns ("GET /entity/{id}"), so a
// request with an unsupported method on a known path gets a 405 from the mux itself.
//
// [Middleware] wraps the whole mux. Middleware added first runs first, so the usual stack is
// [Recover], [RequestLogger], [RateLimit] and then [RecordActivity].
//
// # Handler Interface
//
// Handlers implement [Handler], returning the [Route] values they serve, which keeps route definitions
// next to the code that serves them.
//
// # Resource Dispatch
//
// [ResourceHandler] maps the catalog routes onto a [models.Repository]:
//
//	GET    /entity       list, 200 with a JSON array
//	POST   /entity       create, 200 with the stored entity, 400 on a bad body or preset id
//	GET    /entity/{id}  fetch, 200 or 404
//	PUT    /entity/{id}  upsert, 200 with an empty body
//	DELETE /entity/{id}  remove, 200 or 404
//
// The "entity" segment comes from the server resource setting.
//
// # Auxiliary Routes
//
// [HealthHandler] answers GET /health and [ActivityHandler] serves GET /activity/{client} from an
// [activity.Recorder].
package server
