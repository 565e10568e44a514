package handlers

import "html/template"

const dashboardTemplateName = "dashboard"

const dashboardHTML = `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width,initial-scale=1" />
    <title>User Management Dashboard</title>
    <style>
      body { font-family: system-ui, sans-serif; background: #f8fafc; margin: 0; }
      .app-container { max-width: 960px; margin: 0 auto; padding: 24px; }
      .error-message { background: #fee2e2; color: #991b1b; padding: 8px 12px; margin-bottom: 12px; }
      .user-form { display: flex; gap: 8px; flex-wrap: wrap; margin-bottom: 16px; }
      .users-table { width: 100%; border-collapse: collapse; }
      .users-table th, .users-table td { border-bottom: 1px solid #e2e8f0; padding: 8px; text-align: left; }
      .actions form { display: inline; }
      .pagination { margin-top: 16px; display: flex; gap: 8px; }
    </style>
  </head>
  <body>
    <div class="app-container">
      <h1 class="heading">User Management Dashboard</h1>

      {{if .Error}}<div class="error-message">{{.Error}}</div>{{end}}

      <form class="user-form" method="post" action="/submit">
        <input name="firstName" value="{{.Draft.FirstName}}" placeholder="First Name" class="input-field" />
        <input name="lastName" value="{{.Draft.LastName}}" placeholder="Last Name" class="input-field" />
        <input name="email" value="{{.Draft.Email}}" placeholder="Email" class="input-field" />
        <input name="department" value="{{.Draft.Department}}" placeholder="Department" class="input-field" />
        <button type="submit" class="submit-button">{{if eq .Mode "edit"}}Update User{{else}}+ Add User{{end}}</button>
      </form>

      {{if .Loading}}<div class="loading">Loading...</div>{{else}}
      <table class="users-table">
        <thead>
          <tr><th>Name</th><th>Email</th><th>Department</th><th>Actions</th></tr>
        </thead>
        <tbody>
          {{range .Records}}
          <tr>
            <td>{{.FullName}}</td>
            <td>{{.Email}}</td>
            <td>{{.Department}}</td>
            <td class="actions">
              <form method="post" action="/records/{{.ID}}/edit"><button type="submit" class="action-btn edit-btn">Edit</button></form>
              <form method="post" action="/records/{{.ID}}/delete"><button type="submit" class="action-btn delete-btn">Delete</button></form>
            </td>
          </tr>
          {{end}}
        </tbody>
      </table>
      {{end}}

      <div class="pagination">
        <form method="post" action="/page/prev"><button type="submit" {{if eq .CurrentPage 1}}disabled{{end}}>Prev</button></form>
        <span>Page {{.CurrentPage}}</span>
        <form method="post" action="/page/next"><button type="submit">Next</button></form>
      </div>
    </div>
  </body>
</html>`

// DashboardTemplate is registered on the router with SetHTMLTemplate.
func DashboardTemplate() *template.Template {
	return template.Must(template.New(dashboardTemplateName).Parse(dashboardHTML))
}
