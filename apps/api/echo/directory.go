package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/escola/core/directory"
)

type directoryApi struct {
	dir directory.Directory
}

func registerDirectoryAPI(g *echo.Group, jwt, staff echo.MiddlewareFunc, dir directory.Directory) {
	api := directoryApi{dir: dir}

	ag := g.Group("", jwt, staff)
	ag.GET("/students", api.students)
	ag.GET("/courses", api.courses)
	ag.GET("/classes", api.classes)
}

// Handlers

func (api *directoryApi) students(ctx echo.Context) error {
	students, err := api.dir.Students(ctx.Request().Context())
	if err != nil {
		return directoryErr(err)
	}
	return ctx.JSON(http.StatusOK, directory.FilterStudents(students, ctx.QueryParam("search")))
}

func (api *directoryApi) courses(ctx echo.Context) error {
	courses, err := api.dir.Courses(ctx.Request().Context())
	if err != nil {
		return directoryErr(err)
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *directoryApi) classes(ctx echo.Context) error {
	classes, err := api.dir.Classes(ctx.Request().Context())
	if err != nil {
		return directoryErr(err)
	}
	if code := ctx.QueryParam("course"); code != "" {
		classes = directory.ClassesOf(classes, code)
	}
	return ctx.JSON(http.StatusOK, classes)
}
