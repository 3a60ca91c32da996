package controller

import (
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/service"
	"onlinecourse_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type CatalogController struct {
	CatalogService *service.CatalogService
}

func NewCatalogController(catalogService *service.CatalogService) *CatalogController {
	return &CatalogController{CatalogService: catalogService}
}

// @Summary 创建课程
// @Tags 课程
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CourseReq true "课程信息"
// @Success 201 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response
// @Router /courses [post]
func (c *CatalogController) CreateCourse(ctx *gin.Context) {
	var req service.CourseReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	course, err := c.CatalogService.CreateCourse(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// @Summary 更新课程
// @Tags 课程
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param body body service.CourseReq true "需要修改的字段"
// @Success 200 {object} util.Response{data=model.Course}
// @Router /courses/{id} [put]
func (c *CatalogController) UpdateCourse(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.CourseReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	course, err := c.CatalogService.UpdateCourse(ctx.Request.Context(), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// @Summary 课程详情
// @Tags 课程
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response
// @Router /courses/{id} [get]
func (c *CatalogController) GetCourse(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	course, err := c.CatalogService.GetCourse(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// @Summary 课程列表
// @Tags 课程
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /courses [get]
func (c *CatalogController) ListCourses(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", strconv.Itoa(util.DefaultLimit)))
	page, limit = util.NormalizePage(page, limit)

	courses, total, err := c.CatalogService.ListCourses(ctx.Request.Context(), page, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{
		List:  courses,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// @Summary 为课程分配讲师
// @Tags 课程
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param instructorId path int true "讲师ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Router /courses/{id}/instructors/{instructorId} [post]
func (c *CatalogController) AssignInstructor(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	instructorID, ok := pathID(ctx, "instructorId")
	if !ok {
		return
	}
	course, err := c.CatalogService.AssignInstructor(ctx.Request.Context(), courseID, instructorID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// @Summary 创建课时
// @Tags 课时
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param body body service.LessonReq true "课时信息"
// @Success 201 {object} util.Response{data=model.Lesson}
// @Router /courses/{id}/lessons [post]
func (c *CatalogController) CreateLesson(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.LessonReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	lesson, err := c.CatalogService.CreateLesson(ctx.Request.Context(), courseID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, lesson)
}

// @Summary 课时列表
// @Tags 课时
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response{data=[]model.Lesson}
// @Router /courses/{id}/lessons [get]
func (c *CatalogController) ListLessons(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	lessons, err := c.CatalogService.ListLessons(ctx.Request.Context(), courseID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, lessons)
}

// @Summary 课时详情
// @Tags 课时
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课时ID"
// @Success 200 {object} util.Response{data=model.Lesson}
// @Router /lessons/{id} [get]
func (c *CatalogController) GetLesson(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	lesson, err := c.CatalogService.GetLesson(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, lesson)
}

// @Summary 更新课时
// @Tags 课时
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课时ID"
// @Param body body service.LessonReq true "需要修改的字段"
// @Success 200 {object} util.Response{data=model.Lesson}
// @Router /lessons/{id} [put]
func (c *CatalogController) UpdateLesson(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.LessonReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	lesson, err := c.CatalogService.UpdateLesson(ctx.Request.Context(), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, lesson)
}

// @Summary 发布课时
// @Description 每道题至少有一个正确选项时才能发布
// @Tags 课时
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课时ID"
// @Success 200 {object} util.Response{data=model.Lesson}
// @Router /lessons/{id}/publish [post]
func (c *CatalogController) PublishLesson(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	lesson, err := c.CatalogService.PublishLesson(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, lesson)
}

// @Summary 创建题目（可附带选项）
// @Tags 题目
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课时ID"
// @Param body body service.QuestionReq true "题目信息"
// @Success 201 {object} util.Response{data=model.Question}
// @Router /lessons/{id}/questions [post]
func (c *CatalogController) CreateQuestion(ctx *gin.Context) {
	lessonID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.QuestionReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	question, err := c.CatalogService.CreateQuestion(ctx.Request.Context(), lessonID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, question)
}

// @Summary 题目列表
// @Tags 题目
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课时ID"
// @Success 200 {object} util.Response{data=[]model.Question}
// @Router /lessons/{id}/questions [get]
func (c *CatalogController) ListQuestions(ctx *gin.Context) {
	lessonID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	questions, err := c.CatalogService.ListQuestions(ctx.Request.Context(), lessonID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if hideAnswers(ctx) {
		for i := range questions {
			redactChoices(questions[i].Choices)
		}
	}
	util.Success(ctx, questions)
}

// @Summary 更新题目
// @Tags 题目
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "题目ID"
// @Param body body service.QuestionUpdateReq true "需要修改的字段"
// @Success 200 {object} util.Response{data=model.Question}
// @Router /questions/{id} [put]
func (c *CatalogController) UpdateQuestion(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.QuestionUpdateReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	question, err := c.CatalogService.UpdateQuestion(ctx.Request.Context(), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, question)
}

// @Summary 创建选项
// @Tags 题目
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "题目ID"
// @Param body body service.ChoiceReq true "选项信息"
// @Success 201 {object} util.Response{data=model.Choice}
// @Router /questions/{id}/choices [post]
func (c *CatalogController) CreateChoice(ctx *gin.Context) {
	questionID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.ChoiceReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	choice, err := c.CatalogService.CreateChoice(ctx.Request.Context(), questionID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, choice)
}

// @Summary 选项列表
// @Tags 题目
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response{data=[]model.Choice}
// @Router /questions/{id}/choices [get]
func (c *CatalogController) ListChoices(ctx *gin.Context) {
	questionID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	choices, err := c.CatalogService.ListChoices(ctx.Request.Context(), questionID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if hideAnswers(ctx) {
		redactChoices(choices)
	}
	util.Success(ctx, choices)
}

// @Summary 更新选项
// @Tags 题目
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "选项ID"
// @Param body body service.ChoiceUpdateReq true "需要修改的字段"
// @Success 200 {object} util.Response{data=model.Choice}
// @Router /choices/{id} [put]
func (c *CatalogController) UpdateChoice(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.ChoiceUpdateReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	choice, err := c.CatalogService.UpdateChoice(ctx.Request.Context(), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, choice)
}

// learners never see which choices are correct
func hideAnswers(ctx *gin.Context) bool {
	user := util.GetUserFromContext(ctx)
	return user == nil || user.Role == util.RoleLearner
}

func redactChoices(choices []model.Choice) {
	for i := range choices {
		choices[i].IsCorrect = false
	}
}
